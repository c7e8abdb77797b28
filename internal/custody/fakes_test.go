package custody

import (
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"evidencechain/pkg/types"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (b *fakeBlobs) put(path string, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = []byte(content)
}

func (b *fakeBlobs) remove(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, path)
}

func (b *fakeBlobs) Download(ctx context.Context, path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	content, ok := b.objects[path]
	if !ok {
		return nil, types.ErrBlobNotFound
	}
	return append([]byte(nil), content...), nil
}

// fakeLedger holds one lock for all cases, which is a stricter
// serialization than the per-case scope the stores provide.
type fakeLedger struct {
	mu       sync.Mutex
	seq      int64
	records  []*types.Evidence
	audit    []*types.AuditLogEntry
	appendFn func(*types.Evidence) error

	// recordErrs fail an attempt before anything is stored; ackErrs fail
	// it after the write has been applied.
	recordErrs []error
	ackErrs    []error
	recordCall int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{}
}

func (l *fakeLedger) tip(caseID string) *types.Evidence {
	var tip *types.Evidence
	for _, r := range l.records {
		if r.CaseID != caseID {
			continue
		}
		if tip == nil || r.CreatedAt.After(tip.CreatedAt) || (r.CreatedAt.Equal(tip.CreatedAt) && r.Sequence > tip.Sequence) {
			tip = r
		}
	}
	return tip
}

func (l *fakeLedger) AppendLinked(ctx context.Context, caseID string, link types.EvidenceLinker) (*types.Evidence, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var tip *types.Evidence
	if t := l.tip(caseID); t != nil {
		c := *t
		tip = &c
	}

	record, err := link(tip)
	if err != nil {
		return nil, err
	}

	if l.appendFn != nil {
		if err := l.appendFn(record); err != nil {
			return nil, err
		}
	}

	for _, r := range l.records {
		if r.ID == record.ID {
			return nil, types.NewError(types.ErrorKindPersistence, "duplicate evidence id", nil)
		}
	}

	l.seq++
	record.Sequence = l.seq
	stored := *record
	l.records = append(l.records, &stored)

	out := stored
	return &out, nil
}

func (l *fakeLedger) Evidence(ctx context.Context, evidenceID string) (*types.Evidence, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.ID == evidenceID {
			c := *r
			return &c, nil
		}
	}
	return nil, types.ErrEvidenceNotFound
}

func (l *fakeLedger) EvidenceByCase(ctx context.Context, caseID string, limit uint64) ([]*types.Evidence, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*types.Evidence
	for _, r := range l.records {
		if r.CaseID == caseID {
			c := *r
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *fakeLedger) RecordTampering(ctx context.Context, entry *types.AuditLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	call := l.recordCall
	l.recordCall++
	if call < len(l.recordErrs) && l.recordErrs[call] != nil {
		return l.recordErrs[call]
	}

	found := false
	for _, r := range l.records {
		if r.ID == entry.EvidenceID {
			r.Status = types.EvidenceStatusCompromised
			r.VerificationStatus = types.VerificationStatusFailed
			found = true
		}
	}
	if !found {
		return types.ErrEvidenceNotFound
	}

	stored := false
	for _, a := range l.audit {
		if a.ID == entry.ID {
			stored = true
		}
	}
	if !stored {
		c := *entry
		l.audit = append(l.audit, &c)
	}

	if call < len(l.ackErrs) && l.ackErrs[call] != nil {
		return l.ackErrs[call]
	}
	return nil
}

func (l *fakeLedger) set(evidenceID string, fn func(*types.Evidence)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.ID == evidenceID {
			fn(r)
		}
	}
}

func (l *fakeLedger) auditCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.audit)
}

func mustIngest(t *testing.T, w *Writer, path, caseID string) *types.IngestResult {
	t.Helper()
	res, err := w.Ingest(context.Background(), &types.IngestRequest{FilePath: path, CaseID: caseID})
	if err != nil {
		t.Fatalf("ingest %s: %v", path, err)
	}
	return res
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
