package postgres

import "context"

// Probe reports record-store connectivity for readiness checks.
type Probe struct {
	repo *LetterRepository
}

func NewProbe(repo *LetterRepository) *Probe {
	return &Probe{repo: repo}
}

func (p *Probe) Name() string { return "postgres" }

func (p *Probe) Check(ctx context.Context) error {
	return p.repo.Ping(ctx)
}
