package catalog

import (
	"bytes"
	"context"
	"log"
	"sync"
	"time"

	"catalog-backend/firebase"
)

// maxConcurrentUploads bounds how many files are in flight against the blob
// store at once.
const maxConcurrentUploads = 3

// UploadFile is one file taken from a multipart batch, fully read so the
// upload can outlive the request that carried it.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadOutcome records how a single dispatched file settled. A batch with
// failed files still settles; callers that care inspect these instead of logs.
type UploadOutcome struct {
	Filename  string    `json:"filename"`
	Links     []string  `json:"links,omitempty"`
	Error     string    `json:"error,omitempty"`
	SettledAt time.Time `json:"settled_at"`
}

// Pipeline fans a draft's file batches out to the blob store. The pending
// count is owned by the pipeline and shared across batches, so a join
// observes every upload dispatched before it - including ones from earlier,
// still-unresolved batches.
type Pipeline struct {
	storage firebase.StorageClient
	list    *ImageList
	timeout time.Duration
	sem     chan struct{}

	mu       sync.Mutex
	pending  int
	idle     chan struct{} // closed while pending == 0
	outcomes []UploadOutcome
}

func NewPipeline(storage firebase.StorageClient, list *ImageList, timeout time.Duration) *Pipeline {
	closed := make(chan struct{})
	close(closed)
	return &Pipeline{
		storage: storage,
		list:    list,
		timeout: timeout,
		sem:     make(chan struct{}, maxConcurrentUploads),
		idle:    closed,
	}
}

// Enqueue dispatches every file in the batch as its own upload. An empty
// batch is a caller error. Files do not block each other beyond the
// concurrency cap, and a failed file never aborts its siblings: its outcome
// is recorded, the pending count still drops, and the batch settles.
func (p *Pipeline) Enqueue(files []UploadFile) error {
	if len(files) == 0 {
		return &ValidationError{Field: "images", Reason: "no images selected"}
	}

	p.mu.Lock()
	if p.pending == 0 {
		p.idle = make(chan struct{})
	}
	p.pending += len(files)
	p.mu.Unlock()

	for _, f := range files {
		go p.upload(f)
	}
	return nil
}

func (p *Pipeline) upload(f UploadFile) {
	defer p.settle()

	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	// Uploads run detached from the request that enqueued them; the only
	// deadline is the per-file timeout, so a hung transfer cannot wedge the
	// pipeline in Uploading forever.
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	links, err := p.storage.UploadProductImage(ctx, bytes.NewReader(f.Data), f.Name, f.ContentType)
	outcome := UploadOutcome{Filename: f.Name, SettledAt: time.Now()}
	if err != nil {
		log.Printf("Image upload failed for %s: %v", f.Name, err)
		outcome.Error = err.Error()
	} else {
		outcome.Links = links
		p.list.Append(links...)
	}

	p.mu.Lock()
	p.outcomes = append(p.outcomes, outcome)
	p.mu.Unlock()
}

func (p *Pipeline) settle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending--
	if p.pending == 0 {
		close(p.idle)
	}
}

// Join blocks until every upload dispatched before the call has settled,
// or ctx is done. Uploads enqueued after Join begins are not waited for here;
// a later Join covers them.
func (p *Pipeline) Join(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Idle reports whether no uploads are outstanding.
func (p *Pipeline) Idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending == 0
}

// Pending returns the number of uploads not yet settled.
func (p *Pipeline) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Outcomes returns a snapshot of per-file results in settle order.
func (p *Pipeline) Outcomes() []UploadOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]UploadOutcome(nil), p.outcomes...)
}
