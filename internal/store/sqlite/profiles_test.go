package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

func TestCreateAndGetProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := seedProfile(t, s, "user-1")

	got, err := s.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.ID != want.ID || got.AvatarID != domain.DefaultAvatar {
		t.Errorf("unexpected profile: %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt.UTC()) {
		t.Errorf("created_at round trip: got %v want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestCreateProfile_Duplicate(t *testing.T) {
	s := newTestStore(t)
	seedProfile(t, s, "user-1")

	err := s.CreateProfile(context.Background(), domain.NewProfile("user-1", "again"))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProfile(context.Background(), "ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProfileAvatar(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "user-1")

	if err := s.UpdateProfileAvatar(ctx, "user-1", "owl"); err != nil {
		t.Fatalf("update avatar: %v", err)
	}
	p, _ := s.GetProfile(ctx, "user-1")
	if p.AvatarID != "owl" {
		t.Errorf("expected owl, got %s", p.AvatarID)
	}

	if err := s.UpdateProfileAvatar(ctx, "ghost", "owl"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing profile, got %v", err)
	}
}

func TestCreditProfile_Accumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedProfile(t, s, "user-1")

	for range 3 {
		if err := s.CreditProfile(ctx, "user-1", domain.ProfileCredit{Books: 1, Pages: 100, XP: 100}); err != nil {
			t.Fatalf("credit: %v", err)
		}
	}
	if err := s.CreditProfile(ctx, "user-1", domain.ProfileCredit{XP: 50}); err != nil {
		t.Fatalf("credit xp only: %v", err)
	}

	p, _ := s.GetProfile(ctx, "user-1")
	if p.TotalBooksRead != 3 || p.TotalPagesRead != 300 || p.ExperiencePoints != 350 {
		t.Errorf("unexpected totals: %+v", p)
	}
}
