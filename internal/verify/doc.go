// Package verify confirms that a fixed checklist of literal strings survived
// the whole pipeline into the composite document. The first missing entry is
// reported by name as a *services.VerificationError.
package verify
