package usecase

import (
	"math/rand/v2"
	"time"

	"github.com/Neperienx/souvella-web-sub000/pkg/domain/interfaces"
	"github.com/Neperienx/souvella-web-sub000/pkg/domain/model"
)

type UseCases struct {
	repo   interfaces.Repository
	policy model.Policy
	clock  func() time.Time
	rng    *rand.Rand
	media  interfaces.MediaStore

	Relationship *RelationshipUseCase
	Memory       *MemoryUseCase
	Selection    *SelectionUseCase
	Reaction     *ReactionUseCase
	Freshness    *FreshnessUseCase
}

type Option func(*UseCases)

// WithPolicy replaces the default product policy
func WithPolicy(policy model.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

// WithClock overrides the time source used to determine "today"
func WithClock(clock func() time.Time) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithRand sets the random source of the selection sampler
func WithRand(rng *rand.Rand) Option {
	return func(uc *UseCases) {
		uc.rng = rng
	}
}

// WithMediaStore enables existence checks of media references
func WithMediaStore(media interfaces.MediaStore) Option {
	return func(uc *UseCases) {
		uc.media = media
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		policy: model.DefaultPolicy(),
		clock:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	days := &calendar{clock: uc.clock, loc: uc.policy.Loc()}

	uc.Relationship = NewRelationshipUseCase(repo, uc.policy.MaxMembers)
	uc.Memory = NewMemoryUseCase(repo, uc.Relationship, uc.media)
	uc.Selection = NewSelectionUseCase(repo, NewSampler(uc.rng), days, uc.policy.DefaultSelectionCount)
	uc.Reaction = NewReactionUseCase(repo, days, uc.policy.MaxDailyReactions)
	uc.Freshness = NewFreshnessUseCase(repo, days)

	return uc
}

// Policy returns the effective policy
func (uc *UseCases) Policy() model.Policy {
	return uc.policy
}

// Today returns the current calendar day in the policy time zone
func (uc *UseCases) Today() model.Day {
	return model.DayOf(uc.clock(), uc.policy.Loc())
}

// calendar resolves "today" for day-scoped state
type calendar struct {
	clock func() time.Time
	loc   *time.Location
}

func (c *calendar) now() time.Time {
	return c.clock()
}

func (c *calendar) today() model.Day {
	return model.DayOf(c.clock(), c.loc)
}

// startOfToday returns the first instant of the current day
func (c *calendar) startOfToday() time.Time {
	now := c.clock().In(c.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
}
