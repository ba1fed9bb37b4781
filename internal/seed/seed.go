package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bizrwanda/internal/middleware"
	"bizrwanda/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much demo content Seed generates.
type Options struct {
	Employers       int
	JobSeekers      int
	ListingsPerType int
	// ApplicationsPerSeeker caps how many jobs each job seeker applies to.
	ApplicationsPerSeeker int
	// RandomSeed makes runs reproducible; zero picks a time based seed.
	RandomSeed int64
	// HashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
	HashCost int
	// DryRun builds everything with synthetic IDs and writes nothing.
	DryRun bool
	Now    time.Time
}

// DefaultOptions is the preset used by cmd/seed.
func DefaultOptions() Options {
	return Options{
		Employers:             4,
		JobSeekers:            8,
		ListingsPerType:       3,
		ApplicationsPerSeeker: 2,
		HashCost:              bcrypt.DefaultCost,
	}
}

// Summary counts what Seed created.
type Summary struct {
	Users        int
	Companies    int
	Profiles     int
	Listings     map[models.PostType]int
	Applications int
}

func (o Options) normalized() Options {
	if o.Employers <= 0 {
		o.Employers = 1
	}
	if o.ListingsPerType <= 0 {
		o.ListingsPerType = 1
	}
	if o.ApplicationsPerSeeker < 0 {
		o.ApplicationsPerSeeker = 0
	}
	if o.HashCost == 0 {
		o.HashCost = bcrypt.DefaultCost
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	return o
}

// Seed writes reference data plus a demo data set in one transaction. Every
// post type gets at least one approved, active listing.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	opts = opts.normalized()
	factory := NewFactory(opts.RandomSeed, opts.Now)

	if opts.DryRun {
		summary, err := generate(factory, opts, func(v interface{}) error {
			assignID(factory, v)
			return nil
		})
		if err == nil {
			middleware.Logger.Info("Seed dry run complete", summaryAttrs(summary)...)
		}
		return summary, err
	}

	if err := Defaults(ctx, db); err != nil {
		return nil, err
	}

	var summary *Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		summary, err = generate(factory, opts, func(v interface{}) error {
			return tx.Create(v).Error
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("seed demo data: %w", err)
	}

	middleware.Logger.Info("Seed complete", summaryAttrs(summary)...)
	return summary, nil
}

func generate(f *Factory, opts Options, save func(interface{}) error) (*Summary, error) {
	summary := &Summary{Listings: map[models.PostType]int{}}

	type employer struct {
		user    *models.User
		company *models.Company
	}
	employers := make([]employer, 0, opts.Employers)
	for i := 0; i < opts.Employers; i++ {
		u, err := f.User(models.RoleEmployer, opts.HashCost)
		if err != nil {
			return nil, err
		}
		if err := save(u); err != nil {
			return nil, fmt.Errorf("create employer: %w", err)
		}
		c := f.Company(u.ID)
		if i == 0 {
			c.IsFeatured = true
		}
		if err := save(c); err != nil {
			return nil, fmt.Errorf("create company: %w", err)
		}
		employers = append(employers, employer{user: u, company: c})
		summary.Users++
		summary.Companies++
	}

	seekers := make([]*models.User, 0, opts.JobSeekers)
	for i := 0; i < opts.JobSeekers; i++ {
		u, err := f.User(models.RoleJobSeeker, opts.HashCost)
		if err != nil {
			return nil, err
		}
		if err := save(u); err != nil {
			return nil, fmt.Errorf("create job seeker: %w", err)
		}
		if err := save(f.Profile(u.ID)); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		seekers = append(seekers, u)
		summary.Users++
		summary.Profiles++
	}

	var jobs []*models.Listing
	n := 0
	for _, postType := range models.PostTypes {
		for i := 0; i < opts.ListingsPerType; i++ {
			owner := employers[n%len(employers)]
			n++
			company := owner.company
			// Auctions and announcements are often posted by individuals.
			if i%2 == 1 && (postType == models.PostTypeAuction || postType == models.PostTypeAnnouncement) {
				company = nil
			}
			row, err := f.Listing(postType, owner.user.ID, company)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				row.IsFeatured = true
			}
			if err := save(row); err != nil {
				return nil, fmt.Errorf("create %s listing: %w", postType, err)
			}
			summary.Listings[postType]++
			if postType == models.PostTypeJob {
				jobs = append(jobs, row)
			}
		}
	}

	for i, seeker := range seekers {
		for k := 0; k < opts.ApplicationsPerSeeker && k < len(jobs); k++ {
			job := jobs[(i+k)%len(jobs)]
			if err := save(f.Application(seeker.ID, job.ID)); err != nil {
				return nil, fmt.Errorf("create application: %w", err)
			}
			summary.Applications++
		}
	}

	return summary, nil
}

func assignID(f *Factory, v interface{}) {
	switch m := v.(type) {
	case *models.User:
		m.ID = f.syntheticID()
	case *models.Company:
		m.ID = f.syntheticID()
	case *models.JobSeekerProfile:
		m.ID = f.syntheticID()
	case *models.Listing:
		m.ID = f.syntheticID()
	case *models.Application:
		m.ID = f.syntheticID()
	}
}

func summaryAttrs(s *Summary) []any {
	return []any{
		slog.Int("users", s.Users),
		slog.Int("companies", s.Companies),
		slog.Int("jobs", s.Listings[models.PostTypeJob]),
		slog.Int("auctions", s.Listings[models.PostTypeAuction]),
		slog.Int("tenders", s.Listings[models.PostTypeTender]),
		slog.Int("announcements", s.Listings[models.PostTypeAnnouncement]),
		slog.Int("applications", s.Applications),
	}
}
