package seed

import (
	"fmt"
	"log"

	"snapfeed/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// DryRun builds entities without writing to the database.
	DryRun bool
	// MaxDays bounds the created_at spread of generated posts; 0 means 90.
	MaxDays int
	// SkipBcrypt stores a plaintext password to speed up large seed runs.
	SkipBcrypt bool
}

// Distribution describes how seeded posts split across media kinds,
// in percent. The fields should sum to 100.
type Distribution struct {
	None     int
	Single   int
	Sequence int
}

// defaultDistribution leans toward single-image posts, which dominate real
// feeds, while keeping enough caption-only and sequence posts to exercise
// every media variant.
var defaultDistribution = Distribution{None: 20, Single: 50, Sequence: 30}

// Distributions are named seeding presets.
var Distributions = map[string]Distribution{
	"default":      defaultDistribution,
	"text-heavy":   {None: 60, Single: 30, Sequence: 10},
	"gallery":      {None: 10, Single: 30, Sequence: 60},
	"single-shots": {None: 0, Single: 100, Sequence: 0},
}

// computeCounts splits total across the distribution, assigning the
// remainder from integer truncation to the single-image bucket.
func computeCounts(total int, d Distribution) (none, single, sequence int) {
	none = total * d.None / 100
	sequence = total * d.Sequence / 100
	single = total - none - sequence
	return none, single, sequence
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	return SeedWithDistribution(db, opts, defaultDistribution)
}

// SeedWithDistribution populates the database using a specific media-kind
// distribution for the generated posts.
func SeedWithDistribution(db *gorm.DB, opts Options, dist Distribution) error {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	// Clear existing data to avoid conflicts if requested
	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	factory := NewFactory(db, opts)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	posts, err := createPosts(factory, users, opts.NumPosts, dist)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	if err := createEngagement(factory, users, posts); err != nil {
		return fmt.Errorf("failed to create likes and comments: %w", err)
	}

	log.Println("Database seeding completed successfully")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, post_images, posts, profiles, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include a few fixed accounts so dev logins stay stable.
	wellKnown := []struct {
		name  string
		email string
	}{
		{"Demo User", "demo@example.com"},
		{"Test User", "test@example.com"},
	}
	if count >= len(wellKnown) {
		for _, w := range wellKnown {
			w := w
			user, err := factory.CreateUser(func(u *models.User) {
				u.Name = w.name
				u.Email = w.email
			})
			if err != nil {
				// likely exists from a previous run without cleaning
				continue
			}
			users = append(users, user)
		}
	}

	for i := len(users); i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		// Roughly half the users get a profile; a missing row is a valid state.
		if i%2 == 0 {
			if _, err := factory.CreateProfile(user); err != nil {
				log.Printf("Failed to create profile for user %d: %v", user.ID, err)
			}
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

func createPosts(factory *Factory, users []*models.User, count int, dist Distribution) ([]*models.Post, error) {
	if len(users) == 0 || count == 0 {
		return nil, nil
	}

	none, single, sequence := computeCounts(count, dist)
	log.Printf("Post split: %d caption-only, %d single-image, %d sequences", none, single, sequence)

	posts := make([]*models.Post, 0, count)
	kindFor := func(i int) models.MediaKind {
		switch {
		case i < none:
			return models.MediaNone
		case i < none+single:
			return models.MediaSingle
		default:
			return models.MediaSequence
		}
	}

	for i := 0; i < count; i++ {
		user := users[factory.rng.Intn(len(users))]
		posts = append(posts, factory.BuildPostWithMedia(user, kindFor(i)))
	}

	if err := factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// createEngagement scatters likes and comments over the seeded posts. Counts
// are always derived from these rows at read time, so there is nothing to
// backfill on the posts themselves.
func createEngagement(factory *Factory, users []*models.User, posts []*models.Post) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	for _, post := range posts {
		likers := factory.rng.Intn(len(users) + 1)
		for _, u := range factory.rng.Perm(len(users))[:likers] {
			if users[u].ID == post.UserID && factory.rng.Intn(2) == 0 {
				continue
			}
			if err := factory.CreateLike(users[u], post); err != nil {
				return err
			}
		}

		comments := factory.rng.Intn(4)
		for i := 0; i < comments; i++ {
			commenter := users[factory.rng.Intn(len(users))]
			if _, err := factory.CreateComment(commenter, post); err != nil {
				return err
			}
		}
	}
	return nil
}
