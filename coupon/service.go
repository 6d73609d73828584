package coupon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Quote is the outcome of applying a coupon to an order amount. A zero-value
// discount with an empty code means no coupon was applied.
type Quote struct {
	Code     string `json:"code,omitempty"`
	Discount int64  `json:"discount"`
	Payable  int64  `json:"payable"`
}

// Service validates coupons against orders and maintains the coupon ledger.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// Option configures optional Service settings.
type Option func(*Service)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a coupon service.
func NewService(store Store, log *slog.Logger, opts ...Option) *Service {
	if store == nil {
		panic("coupon: Store is required")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeCode canonicalizes a user-entered coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Apply validates a coupon code for a tenant and order amount and returns the
// resulting quote. An empty code is not an error: the order simply proceeds
// undiscounted. Apply never mutates the ledger; call CommitUsage once payment
// is confirmed.
func (s *Service) Apply(ctx context.Context, code, tenantID string, amount int64) (Quote, error) {
	code = NormalizeCode(code)
	if code == "" {
		return Quote{Payable: amount}, nil
	}

	c, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return Quote{}, err
	}

	if err := c.Validate(tenantID, amount, s.now().UTC()); err != nil {
		return Quote{}, err
	}

	discount := c.Discount(amount)
	return Quote{
		Code:     c.Code,
		Discount: discount,
		Payable:  amount - discount,
	}, nil
}

// CommitUsage records a redemption after a successful payment. The store
// enforces the usage limits atomically, so a coupon that was valid at quote
// time can still fail here if a concurrent order exhausted it.
func (s *Service) CommitUsage(ctx context.Context, code, tenantID string) error {
	code = NormalizeCode(code)
	if code == "" {
		return nil
	}

	err := s.store.CommitUsage(ctx, code, tenantID)
	if !errors.Is(err, ErrUsageCommitFailed) {
		return err
	}

	// The conditional update matched nothing. Re-read to name the limit that
	// was hit, falling back to the bare commit failure if the read fails.
	c, ferr := s.store.FindByCode(ctx, code)
	if ferr != nil {
		return err
	}
	if c.TotalUsageLimit > 0 && c.UsedCount >= c.TotalUsageLimit {
		return errors.Join(err, ErrTotalLimitReached)
	}
	if c.PerUserUsageLimit > 0 && c.Usages[tenantID] >= c.PerUserUsageLimit {
		return errors.Join(err, ErrPerUserLimitReached)
	}
	return err
}

// CreateParams carries the input for Create.
type CreateParams struct {
	Code              string
	Type              Type
	Value             int64
	MaxDiscount       int64
	MinOrderValue     int64
	Description       string
	StartsAt          time.Time
	ExpiresAt         time.Time
	Active            bool
	TotalUsageLimit   int
	PerUserUsageLimit int
}

// Create stores a new coupon.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Coupon, error) {
	code := NormalizeCode(params.Code)
	if err := validateParams(code, params.Type, params.Value); err != nil {
		return nil, err
	}

	c := &Coupon{
		Code:              code,
		Type:              params.Type,
		Value:             params.Value,
		MaxDiscount:       params.MaxDiscount,
		MinOrderValue:     params.MinOrderValue,
		Description:       params.Description,
		StartsAt:          params.StartsAt,
		ExpiresAt:         params.ExpiresAt,
		Active:            params.Active,
		TotalUsageLimit:   params.TotalUsageLimit,
		PerUserUsageLimit: params.PerUserUsageLimit,
		Usages:            map[string]int{},
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get retrieves a coupon by database id.
func (s *Service) Get(ctx context.Context, id string) (*Coupon, error) {
	return s.store.Find(ctx, id)
}

// List returns a page of coupons plus the total count. Page numbers start at
// one; out-of-range inputs are clamped.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Coupon, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.store.List(ctx, (page-1)*perPage, perPage)
}

// UpdateParams carries the mutable coupon fields; nil pointers are left
// unchanged. Usage counters are never updatable through the admin surface.
type UpdateParams struct {
	Type              *Type
	Value             *int64
	MaxDiscount       *int64
	MinOrderValue     *int64
	Description       *string
	StartsAt          *time.Time
	ExpiresAt         *time.Time
	Active            *bool
	TotalUsageLimit   *int
	PerUserUsageLimit *int
}

// Update applies a partial update to an existing coupon.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*Coupon, error) {
	c, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		c.Type = *params.Type
	}
	if params.Value != nil {
		c.Value = *params.Value
	}
	if err := validateParams(c.Code, c.Type, c.Value); err != nil {
		return nil, err
	}

	if params.MaxDiscount != nil {
		c.MaxDiscount = *params.MaxDiscount
	}
	if params.MinOrderValue != nil {
		c.MinOrderValue = *params.MinOrderValue
	}
	if params.Description != nil {
		c.Description = *params.Description
	}
	if params.StartsAt != nil {
		c.StartsAt = *params.StartsAt
	}
	if params.ExpiresAt != nil {
		c.ExpiresAt = *params.ExpiresAt
	}
	if params.Active != nil {
		c.Active = *params.Active
	}
	if params.TotalUsageLimit != nil {
		c.TotalUsageLimit = *params.TotalUsageLimit
	}
	if params.PerUserUsageLimit != nil {
		c.PerUserUsageLimit = *params.PerUserUsageLimit
	}

	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ToggleActive flips a coupon's active flag and returns the new state.
func (s *Service) ToggleActive(ctx context.Context, id string) (bool, error) {
	c, err := s.store.Find(ctx, id)
	if err != nil {
		return false, err
	}

	c.Active = !c.Active
	if err := s.store.Update(ctx, c); err != nil {
		return false, err
	}
	return c.Active, nil
}

// Delete removes a coupon by database id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func validateParams(code string, typ Type, value int64) error {
	if code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidCoupon)
	}
	if !typ.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCoupon, typ)
	}
	if value <= 0 {
		return fmt.Errorf("%w: value must be positive", ErrInvalidCoupon)
	}
	if typ == TypePercent && value > 100 {
		return fmt.Errorf("%w: percentage cannot exceed 100", ErrInvalidCoupon)
	}
	return nil
}
