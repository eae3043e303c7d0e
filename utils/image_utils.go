package utils

import (
	"fmt"
	"strings"
)

// ExtractObjectPath recovers the bucket-relative object path from a public
// storage URL, i.e. the piece after "https://storage.googleapis.com/<bucket>/".
// Image rows store the public URL; blob deletes need the object path back.
func ExtractObjectPath(url string) (string, error) {
	const prefix = "https://storage.googleapis.com/"
	if !strings.HasPrefix(url, prefix) {
		return "", fmt.Errorf("not a storage URL: %s", url)
	}

	bucketAndPath := strings.SplitN(strings.TrimPrefix(url, prefix), "/", 2)
	if len(bucketAndPath) != 2 || bucketAndPath[1] == "" {
		return "", fmt.Errorf("storage URL has no object path: %s", url)
	}

	return bucketAndPath[1], nil
}
