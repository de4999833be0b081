package verify_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"quire/internal/config"
	"quire/internal/notifications"
	"quire/internal/services"
	"quire/internal/testsupport"
	"quire/internal/verify"
)

const fullDocument = "bringing pistols into your \\\\ home--- to explain how I got the opening " +
	"goodness of humanity; he could actually x~--- that he bric\u2010a\u2010brac presumptions."

func TestCheckPassesWhenEveryEntryPresent(t *testing.T) {
	if err := verify.Check(fullDocument, "f_mm.tex", config.DefaultChecklist()); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestCheckNamesMissingEntry(t *testing.T) {
	doc := strings.Replace(fullDocument, "presumptions.", "presumptions", 1)
	err := verify.Check(doc, "f_mm.tex", config.DefaultChecklist())
	if !errors.Is(err, services.ErrVerification) {
		t.Fatalf("expected verification error, got %v", err)
	}
	var verr *services.VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VerificationError, got %T", err)
	}
	if verr.Missing != "presumptions." || verr.Document != "f_mm.tex" {
		t.Fatalf("unexpected error fields: %+v", verr)
	}
}

func TestCheckReportsFirstMissingInOrder(t *testing.T) {
	checklist := []string{"alpha", "beta", "gamma"}
	err := verify.Check("gamma only", "doc", checklist)
	var verr *services.VerificationError
	if !errors.As(err, &verr) || verr.Missing != "alpha" {
		t.Fatalf("expected alpha to be reported first, got %v", err)
	}
}

func TestCheckIsCaseSensitive(t *testing.T) {
	if err := verify.Check("Presumptions.", "doc", []string{"presumptions."}); err == nil {
		t.Fatal("expected case-sensitive mismatch")
	}
}

func TestVerifierNotifiesOnSuccessOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f_mm.tex")
	testsupport.WriteText(t, path, fullDocument)

	notifier := &testsupport.RecordingNotifier{}
	v := &verify.Verifier{Checklist: config.DefaultChecklist(), Notifier: notifier}
	if err := v.VerifyFile(context.Background(), path, 13); err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if len(notifier.Events) != 1 || notifier.Events[0].Event != notifications.EventBuildVerified {
		t.Fatalf("events = %+v", notifier.Events)
	}
	if notifier.Events[0].Payload["chapters"] != "13" {
		t.Fatalf("payload = %v", notifier.Events[0].Payload)
	}

	failing := &testsupport.RecordingNotifier{}
	v = &verify.Verifier{Checklist: []string{"not there"}, Notifier: failing}
	if err := v.VerifyFile(context.Background(), path, 13); err == nil {
		t.Fatal("expected failure")
	}
	if len(failing.Events) != 0 {
		t.Fatalf("no notification expected on failure, got %+v", failing.Events)
	}

	if err := v.VerifyFile(context.Background(), filepath.Join(dir, "absent.tex"), 13); !errors.Is(err, services.ErrVerification) {
		t.Fatalf("expected verification error for missing document, got %v", err)
	}
}
