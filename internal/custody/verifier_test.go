package custody

import (
	"context"
	"errors"
	"testing"
	"time"

	"evidencechain/pkg/types"
)

func newVerifierFixture(t *testing.T) (*fakeBlobs, *fakeLedger, *Writer, *Verifier) {
	t.Helper()
	blobs := newFakeBlobs()
	ledger := newFakeLedger()
	w := NewWriter(testLogger(), blobs, ledger)
	v := NewVerifier(testLogger(), blobs, ledger, ledger, 3, time.Millisecond)
	return blobs, ledger, w, v
}

func TestVerify_UnmodifiedIsIdempotent(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("a", "hello")
	ingested := mustIngest(t, w, "a", "C1")

	for i := 0; i < 5; i++ {
		res, err := v.Verify(context.Background(), ingested.Evidence.ID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !res.IsValid || res.Status != types.VerificationLabelValid {
			t.Fatalf("expected valid result, got %+v", res)
		}
		if res.CurrentHash != helloHash || res.CalculatedHash != helloHash {
			t.Fatalf("unexpected hashes %+v", res)
		}
	}

	if n := ledger.auditCount(); n != 0 {
		t.Fatalf("expected no audit entries, got %d", n)
	}
	record, _ := ledger.Evidence(context.Background(), ingested.Evidence.ID)
	if record.Status != types.EvidenceStatusValid {
		t.Fatalf("expected status to stay valid, got %s", record.Status)
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("c1/one", "hello")
	blobs.put("c1/two", "second file")
	mustIngest(t, w, "c1/one", "C1")
	second := mustIngest(t, w, "c1/two", "C1")

	blobs.put("c1/two", "second file, altered")

	res, err := v.Verify(context.Background(), second.Evidence.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.IsValid {
		t.Fatal("expected tampering to be detected")
	}
	if res.Status != types.VerificationLabelTampering {
		t.Fatalf("unexpected status label %q", res.Status)
	}
	if res.CurrentHash != second.Hash {
		t.Fatalf("expected original hash in result, got %s", res.CurrentHash)
	}
	if res.CalculatedHash == second.Hash {
		t.Fatal("expected fresh hash to differ")
	}

	record, _ := ledger.Evidence(context.Background(), second.Evidence.ID)
	if record.Status != types.EvidenceStatusCompromised || record.VerificationStatus != types.VerificationStatusFailed {
		t.Fatalf("expected compromised/failed, got %s/%s", record.Status, record.VerificationStatus)
	}
	if record.CurrentHash != second.Hash {
		t.Fatal("current_hash must never be rewritten")
	}

	if n := ledger.auditCount(); n != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", n)
	}
	entry := ledger.audit[0]
	if entry.Action != types.AuditActionTampering || entry.Result != types.AuditResultSuccess || entry.EvidenceID != second.Evidence.ID {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
}

func TestVerify_EachDetectionIsAudited(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("a", "original")
	ingested := mustIngest(t, w, "a", "C1")
	blobs.put("a", "altered")

	for i := 0; i < 3; i++ {
		res, err := v.Verify(context.Background(), ingested.Evidence.ID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if res.IsValid {
			t.Fatal("expected mismatch")
		}
	}

	if n := ledger.auditCount(); n != 3 {
		t.Fatalf("expected one audit entry per detection, got %d", n)
	}
}

func TestVerify_CompromisedIsTerminal(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("a", "original")
	ingested := mustIngest(t, w, "a", "C1")

	blobs.put("a", "altered")
	if _, err := v.Verify(context.Background(), ingested.Evidence.ID); err != nil {
		t.Fatalf("verify: %v", err)
	}

	blobs.put("a", "original")
	res, err := v.Verify(context.Background(), ingested.Evidence.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.IsValid {
		t.Fatal("restored content should hash to the original fingerprint")
	}

	record, _ := ledger.Evidence(context.Background(), ingested.Evidence.ID)
	if record.Status != types.EvidenceStatusCompromised {
		t.Fatalf("expected status to remain compromised, got %s", record.Status)
	}
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name     string
		id       func(ingested string) string
		setup    func(b *fakeBlobs)
		wantKind types.ErrorKind
	}{
		{
			name:     "empty id",
			id:       func(string) string { return "  " },
			wantKind: types.ErrorKindMalformedRequest,
		},
		{
			name:     "unknown evidence",
			id:       func(string) string { return "nope" },
			wantKind: types.ErrorKindNotFound,
		},
		{
			name:     "blob deleted",
			id:       func(id string) string { return id },
			setup:    func(b *fakeBlobs) { b.remove("a") },
			wantKind: types.ErrorKindBlobNotFound,
		},
		{
			name:     "storage down",
			id:       func(id string) string { return id },
			setup:    func(b *fakeBlobs) { b.err = errors.New("503") },
			wantKind: types.ErrorKindStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs, ledger, w, v := newVerifierFixture(t)
			blobs.put("a", "hello")
			ingested := mustIngest(t, w, "a", "C1")
			if tt.setup != nil {
				tt.setup(blobs)
			}

			_, err := v.Verify(context.Background(), tt.id(ingested.Evidence.ID))
			if kind := types.KindOf(err); kind != tt.wantKind {
				t.Fatalf("expected kind %s, got %s (%v)", tt.wantKind, kind, err)
			}

			record, _ := ledger.Evidence(context.Background(), ingested.Evidence.ID)
			if record.Status != types.EvidenceStatusValid {
				t.Fatalf("failed verification must not mutate status, got %s", record.Status)
			}
			if ledger.auditCount() != 0 {
				t.Fatal("failed verification must not append audit entries")
			}
		})
	}
}

func TestVerify_RetriesTamperRecording(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("a", "original")
	ingested := mustIngest(t, w, "a", "C1")
	blobs.put("a", "altered")

	ledger.recordErrs = []error{errors.New("serialization failure"), errors.New("connection reset")}

	res, err := v.Verify(context.Background(), ingested.Evidence.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.IsValid {
		t.Fatal("expected mismatch")
	}
	if ledger.recordCall != 3 {
		t.Fatalf("expected 3 attempts, got %d", ledger.recordCall)
	}
	if ledger.auditCount() != 1 {
		t.Fatalf("expected one audit entry, got %d", ledger.auditCount())
	}
}

func TestVerify_TamperRecordingExhausted(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("a", "original")
	ingested := mustIngest(t, w, "a", "C1")
	blobs.put("a", "altered")

	fail := errors.New("store down")
	ledger.recordErrs = []error{fail, fail, fail}

	_, err := v.Verify(context.Background(), ingested.Evidence.ID)
	if !errors.Is(err, types.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !errors.Is(err, fail) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
	if ledger.recordCall != 3 {
		t.Fatalf("expected 3 attempts, got %d", ledger.recordCall)
	}
}

func TestVerify_CanceledContextStopsRetrying(t *testing.T) {
	blobs, ledger, w, _ := newVerifierFixture(t)
	v := NewVerifier(testLogger(), blobs, ledger, ledger, 5, time.Hour)
	blobs.put("a", "original")
	ingested := mustIngest(t, w, "a", "C1")
	blobs.put("a", "altered")

	ctx, cancel := context.WithCancel(context.Background())
	ledger.recordErrs = []error{errors.New("first attempt fails")}

	done := make(chan error, 1)
	go func() {
		_, err := v.Verify(ctx, ingested.Evidence.ID)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, types.ErrPersistence) {
			t.Fatalf("expected persistence error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("verify did not return after cancellation")
	}

	record, _ := ledger.Evidence(context.Background(), ingested.Evidence.ID)
	if record.Status != types.EvidenceStatusValid {
		t.Fatalf("expected status unchanged, got %s", record.Status)
	}
}

func TestVerify_Scenario(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("C1/hello", "hello")
	blobs.put("C1/second", "another file")

	first := mustIngest(t, w, "C1/hello", "C1")
	if first.Hash != helloHash || first.Evidence.PreviousHash != nil {
		t.Fatalf("unexpected first record %+v", first.Evidence)
	}

	second := mustIngest(t, w, "C1/second", "C1")
	if second.Evidence.PreviousHash == nil || *second.Evidence.PreviousHash != first.Hash {
		t.Fatal("second record must link to first")
	}

	blobs.put("C1/second", "another file!")
	res, err := v.Verify(context.Background(), second.Evidence.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.IsValid {
		t.Fatal("expected tampering")
	}

	record, _ := ledger.Evidence(context.Background(), second.Evidence.ID)
	if record.Status != types.EvidenceStatusCompromised {
		t.Fatalf("expected compromised, got %s", record.Status)
	}
	if ledger.auditCount() != 1 {
		t.Fatalf("expected one audit entry, got %d", ledger.auditCount())
	}
}

func TestVerify_LostAcknowledgementIsNotAFailure(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("a", "original")
	ingested := mustIngest(t, w, "a", "C1")
	blobs.put("a", "altered")

	ledger.ackErrs = []error{errors.New("connection reset after commit")}

	res, err := v.Verify(context.Background(), ingested.Evidence.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.IsValid {
		t.Fatal("expected mismatch")
	}
	if ledger.recordCall != 2 {
		t.Fatalf("expected 2 attempts, got %d", ledger.recordCall)
	}
	if n := ledger.auditCount(); n != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", n)
	}
}

func TestVerify_DoesNotRetryMissingRecord(t *testing.T) {
	blobs, ledger, w, v := newVerifierFixture(t)
	blobs.put("a", "original")
	ingested := mustIngest(t, w, "a", "C1")
	blobs.put("a", "altered")

	ledger.recordErrs = []error{types.ErrEvidenceNotFound, types.ErrEvidenceNotFound, types.ErrEvidenceNotFound}

	_, err := v.Verify(context.Background(), ingested.Evidence.ID)
	if kind := types.KindOf(err); kind != types.ErrorKindNotFound {
		t.Fatalf("expected not found, got %s (%v)", kind, err)
	}
	if ledger.recordCall != 1 {
		t.Fatalf("expected a single attempt, got %d", ledger.recordCall)
	}
}
