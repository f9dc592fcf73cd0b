package warranty

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/homekeep-app/homekeep/internal/email"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/push"
	"github.com/homekeep-app/homekeep/internal/store"
)

const (
	lookaheadDays = 90
	pushWindow    = 7 * 24 * time.Hour
	scanWorkers   = 4
)

// Summary reports what one scan pass found and delivered.
type Summary struct {
	UsersScanned int `json:"users_scanned"`
	ItemsFound   int `json:"items_found"`
	EmailsSent   int `json:"emails_sent"`
	PushesSent   int `json:"pushes_sent"`
}

// Scanner finds inventory items whose warranty expires within the next 90
// days. Each affected user gets one digest email; items inside the final
// week additionally get a push notification. Delivery is best-effort.
type Scanner struct {
	users     *store.UserStore
	inventory *store.InventoryStore
	subs      *store.PushStore

	pusher *push.Service
	mailer *email.Service
	logger *slog.Logger

	now func() time.Time
}

func NewScanner(
	users *store.UserStore,
	inventory *store.InventoryStore,
	subs *store.PushStore,
	pusher *push.Service,
	mailer *email.Service,
	logger *slog.Logger,
) *Scanner {
	return &Scanner{
		users:     users,
		inventory: inventory,
		subs:      subs,
		pusher:    pusher,
		mailer:    mailer,
		logger:    logger,
		now:       time.Now,
	}
}

// Run scans all users with bounded concurrency. Per-user failures are
// collected; one user's bad data never blocks the rest of the scan.
func (s *Scanner) Run(ctx context.Context) (Summary, error) {
	userIDs, err := s.users.ListIDs()
	if err != nil {
		return Summary{}, fmt.Errorf("list users: %w", err)
	}

	var (
		mu   sync.Mutex
		sum  Summary
		errs error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			items, emailed, pushed, err := s.scanUser(userID)

			mu.Lock()
			defer mu.Unlock()
			sum.UsersScanned++
			sum.ItemsFound += items
			if emailed {
				sum.EmailsSent++
			}
			sum.PushesSent += pushed
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("user %d: %w", userID, err))
			}
			return nil
		})
	}

	_ = g.Wait()
	return sum, errs
}

func (s *Scanner) scanUser(userID int64) (items int, emailed bool, pushed int, err error) {
	now := s.now().UTC()
	until := now.AddDate(0, 0, lookaheadDays)

	expiring, err := s.inventory.ListExpiringWarranties(userID, now, until)
	if err != nil {
		return 0, false, 0, err
	}
	if len(expiring) == 0 {
		return 0, false, 0, nil
	}

	if s.mailer != nil && s.mailer.Configured() {
		user, uerr := s.users.GetByID(userID)
		if uerr != nil || user == nil {
			s.logger.Error("load user for warranty digest", "user_id", userID, "error", uerr)
		} else if merr := s.mailer.SendWarrantyDigest(user.Email, expiring, now); merr != nil {
			s.logger.Warn("warranty digest email failed", "user_id", userID, "error", merr)
		} else {
			emailed = true
		}
	}

	pushed = s.pushImminent(userID, expiring, now)
	return len(expiring), emailed, pushed, nil
}

// pushImminent sends a push for each item expiring within a week, to the
// user's primary subscription only.
func (s *Scanner) pushImminent(userID int64, expiring []model.InventoryItem, now time.Time) int {
	if s.pusher == nil {
		return 0
	}

	sub, err := s.subs.FirstActiveForUser(userID)
	if err != nil {
		s.logger.Error("load push subscription", "user_id", userID, "error", err)
		return 0
	}
	if sub == nil {
		return 0
	}

	sent := 0
	for _, item := range expiring {
		if item.WarrantyExpires == nil || item.WarrantyExpires.Sub(now) > pushWindow {
			continue
		}

		err := s.pusher.Send(sub, push.Payload{
			Title: "Warranty expiring",
			Body:  fmt.Sprintf("%s warranty expires %s", item.Name, item.WarrantyExpires.Format("Jan 2")),
			Tag:   fmt.Sprintf("warranty-%d", item.ID),
		})
		switch {
		case err == push.ErrExpired:
			if derr := s.subs.Deactivate(sub.ID); derr != nil {
				s.logger.Error("deactivate expired subscription", "sub_id", sub.ID, "error", derr)
			}
			return sent
		case err != nil:
			s.logger.Warn("warranty push failed", "user_id", userID, "error", err)
		default:
			sent++
		}
	}
	return sent
}
