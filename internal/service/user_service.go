package service

import (
	"context"
	"strings"

	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/repository"
	"snapfeed/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type UpdateProfileInput struct {
	UserID   uint
	Name     string
	Avatar   string
	Bio      string
	Location string
}

func NewUserService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) *UserService {
	return &UserService{userRepo: userRepo, profileRepo: profileRepo}
}

// Register creates an account. Email uniqueness is enforced by the
// database constraint, not by a lookup, so racing signups cannot both
// succeed.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns the user. The same error
// is returned for an unknown email and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("invalid email or password")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SearchUsers runs a directory query and projects the results. A blank
// query browses the directory instead of returning nothing. Results are
// cached per normalized query for a short TTL; directory updates may
// lag by up to that window.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))

	var summaries []models.UserSummary
	err := cache.Aside(ctx, cache.SearchKey(normalized), &summaries, cache.SearchTTL, func() error {
		users, err := s.userRepo.Search(ctx, query)
		if err != nil {
			return err
		}
		summaries = make([]models.UserSummary, 0, len(users))
		for i := range users {
			summaries = append(summaries, users[i].Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetProfile returns the user's profile extension, or nil when the user
// exists but has never edited their profile. The two states are distinct:
// an unknown user is NotFound, a missing profile row is not.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if appErr, ok := models.AsAppError(err); ok && appErr.Code == models.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// SaveProfile upserts the caller's profile extension, creating the row on
// the first edit.
func (s *UserService) SaveProfile(ctx context.Context, userID uint, bio, location string) (*models.Profile, error) {
	profile := &models.Profile{
		UserID:   userID,
		Bio:      bio,
		Location: location,
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile updates the user row and upserts the 1:1 profile
// extension in one call. The profile row is created on first edit.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		if err := validation.ValidateName(in.Name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Name = in.Name
	}
	if in.Avatar != "" {
		if err := validation.ValidateImageURL(in.Avatar); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Avatar = in.Avatar
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if in.Bio != "" || in.Location != "" {
		profile := &models.Profile{
			UserID:   in.UserID,
			Bio:      in.Bio,
			Location: in.Location,
		}
		if err := s.profileRepo.Upsert(ctx, profile); err != nil {
			return nil, err
		}
		user.Profile = profile
	}

	return user, nil
}
