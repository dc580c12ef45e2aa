package services

import (
	"context"
	"errors"
	"fmt"

	"swipe-match-backend/internal/models"
)

// Notifier tells a user about a new match with other
type Notifier interface {
	NotifyMatch(ctx context.Context, match *models.Match, forUser, other *models.User) error
}

// MatchMessage is the user-facing text shown when a match is created
func MatchMessage(other *models.User) string {
	return fmt.Sprintf("It's a match! You and %s liked each other.", other.Name)
}

// MultiNotifier fans a notification out to several notifiers
type MultiNotifier []Notifier

// NotifyMatch calls every notifier and joins their errors
func (m MultiNotifier) NotifyMatch(ctx context.Context, match *models.Match, forUser, other *models.User) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyMatch(ctx, match, forUser, other); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopNotifier drops every notification
type NopNotifier struct{}

func (NopNotifier) NotifyMatch(context.Context, *models.Match, *models.User, *models.User) error {
	return nil
}
