package verify

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"quire/internal/logging"
	"quire/internal/notifications"
	"quire/internal/services"
	"quire/internal/stage"
)

// Check returns a VerificationError for the first checklist entry that does
// not occur in document.
func Check(document, name string, checklist []string) error {
	for _, want := range checklist {
		if !strings.Contains(document, want) {
			return &services.VerificationError{Missing: want, Document: name}
		}
	}
	return nil
}

// Verifier checks the composite document and announces success.
type Verifier struct {
	Checklist []string
	Notifier  notifications.Service
	Logger    *slog.Logger
}

// VerifyFile reads the document at path and checks it. chapters is only
// reported in the success notification.
func (v *Verifier) VerifyFile(ctx context.Context, path string, chapters int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return stage.Fail(stage.Verify, 0, "read document", err)
	}
	return v.Verify(ctx, string(data), path, chapters)
}

// Verify checks document text. On success it logs and publishes a verified
// notification; a notification failure does not fail verification.
func (v *Verifier) Verify(ctx context.Context, document, name string, chapters int) error {
	logger := logging.WithContext(ctx, v.Logger)
	if err := Check(document, name, v.Checklist); err != nil {
		return err
	}

	logger.Info("document verified",
		logging.String("document", name),
		logging.Int("checks", len(v.Checklist)),
	)
	if v.Notifier == nil {
		return nil
	}
	if err := v.Notifier.Publish(ctx, notifications.EventBuildVerified, notifications.Payload{
		"document": name,
		"chapters": strconv.Itoa(chapters),
		"checks":   strconv.Itoa(len(v.Checklist)),
	}); err != nil {
		logger.Debug("verified notification failed", logging.Error(err))
	}
	return nil
}
