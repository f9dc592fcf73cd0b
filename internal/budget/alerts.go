package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/multierr"

	"github.com/homekeep-app/homekeep/internal/email"
	"github.com/homekeep-app/homekeep/internal/model"
	"github.com/homekeep-app/homekeep/internal/push"
	"github.com/homekeep-app/homekeep/internal/store"
	"github.com/homekeep-app/homekeep/internal/websocket"
)

const (
	approachingPct = 80
	exceededPct    = 100
)

// Summary is returned to the cron caller after an evaluation pass.
type Summary struct {
	AlertsChecked int `json:"alerts_checked"`
	AlertsCreated int `json:"alerts_created"`
	AlertsSent    int `json:"alerts_sent"`
}

// Evaluator scans active budget plans and budgeted projects, creating
// deduplicated alerts when spend crosses a threshold. Notification delivery
// is best-effort throughout: a dead push endpoint or mail outage never fails
// the scan.
type Evaluator struct {
	budgets  *store.BudgetStore
	projects *store.ProjectStore
	tasks    *store.TaskStore
	homes    *store.HomeStore
	users    *store.UserStore
	subs     *store.PushStore

	pusher *push.Service
	mailer *email.Service
	hub    *websocket.Hub
	logger *slog.Logger

	now func() time.Time
}

func NewEvaluator(
	budgets *store.BudgetStore,
	projects *store.ProjectStore,
	tasks *store.TaskStore,
	homes *store.HomeStore,
	users *store.UserStore,
	subs *store.PushStore,
	pusher *push.Service,
	mailer *email.Service,
	hub *websocket.Hub,
	logger *slog.Logger,
) *Evaluator {
	return &Evaluator{
		budgets:  budgets,
		projects: projects,
		tasks:    tasks,
		homes:    homes,
		users:    users,
		subs:     subs,
		pusher:   pusher,
		mailer:   mailer,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}
}

// Run evaluates every active plan and budgeted project. Per-plan failures are
// collected rather than aborting the pass; the summary reflects whatever
// completed.
func (e *Evaluator) Run(_ context.Context) (Summary, error) {
	var sum Summary
	var errs error

	now := e.now().UTC()

	plans, err := e.budgets.ListActivePlans(now)
	if err != nil {
		return sum, fmt.Errorf("list active plans: %w", err)
	}

	for _, plan := range plans {
		sum.AlertsChecked++
		created, sent, err := e.evaluatePlan(plan, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("plan %d: %w", plan.ID, err))
			continue
		}
		sum.AlertsCreated += created
		sum.AlertsSent += sent
	}

	budgeted, err := e.projects.ListBudgeted()
	if err != nil {
		return sum, multierr.Append(errs, fmt.Errorf("list budgeted projects: %w", err))
	}

	for _, bp := range budgeted {
		sum.AlertsChecked++
		created, sent, err := e.evaluateProject(bp)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("project %d: %w", bp.Project.ID, err))
			continue
		}
		sum.AlertsCreated += created
		sum.AlertsSent += sent
	}

	return sum, errs
}

func (e *Evaluator) evaluatePlan(plan model.BudgetPlan, now time.Time) (created, sent int, err error) {
	spent, err := e.planSpend(plan, now)
	if err != nil {
		return 0, 0, err
	}

	if plan.Amount <= 0 {
		return 0, 0, nil
	}
	pct := spent / plan.Amount * 100

	var alertType, message string
	switch {
	case pct >= exceededPct:
		alertType = model.AlertExceededLimit
		message = fmt.Sprintf("Budget %q exceeded: $%.2f spent of $%.2f (%.0f%%)", plan.Name, spent, plan.Amount, pct)
	case pct >= approachingPct:
		alertType = model.AlertApproachingLimit
		message = fmt.Sprintf("Budget %q is at %.0f%%: $%.2f spent of $%.2f", plan.Name, pct, spent, plan.Amount)
	default:
		return 0, 0, nil
	}

	open, err := e.budgets.HasOpenAlert(&plan.ID, nil, alertType)
	if err != nil {
		return 0, 0, err
	}
	if open {
		return 0, 0, nil
	}

	alert, err := e.budgets.CreateAlert(&model.BudgetAlert{
		UserID:    plan.UserID,
		PlanID:    &plan.ID,
		AlertType: alertType,
		Message:   message,
	})
	if err != nil {
		return 0, 0, err
	}

	if e.hub != nil {
		e.hub.Notify(plan.UserID, websocket.NewMessage(websocket.EntityAlert, "created", alert.ID, nil))
	}

	if e.deliver(plan.UserID, alert, plan.Name, true) {
		if err := e.budgets.MarkSent(alert.ID); err != nil {
			e.logger.Error("mark alert sent", "alert_id", alert.ID, "error", err)
		}
		return 1, 1, nil
	}
	return 1, 0, nil
}

func (e *Evaluator) evaluateProject(bp store.BudgetedProject) (created, sent int, err error) {
	p := bp.Project

	materials, err := e.projects.ListMaterials(p.ID)
	if err != nil {
		return 0, 0, err
	}
	tools, err := e.projects.ListTools(p.ID)
	if err != nil {
		return 0, 0, err
	}

	cost := p.CostToDate(materials, tools)
	if p.Budget == nil || cost <= *p.Budget {
		return 0, 0, nil
	}

	open, err := e.budgets.HasOpenAlert(nil, &p.ID, model.AlertProjectOverBudget)
	if err != nil {
		return 0, 0, err
	}
	if open {
		return 0, 0, nil
	}

	alert, err := e.budgets.CreateAlert(&model.BudgetAlert{
		UserID:    bp.UserID,
		ProjectID: &p.ID,
		AlertType: model.AlertProjectOverBudget,
		Message:   fmt.Sprintf("Project %q is over budget: $%.2f spent of $%.2f", p.Title, cost, *p.Budget),
	})
	if err != nil {
		return 0, 0, err
	}

	if e.hub != nil {
		e.hub.Notify(bp.UserID, websocket.NewMessage(websocket.EntityAlert, "created", alert.ID, nil))
	}

	// Project alerts go out by push only.
	if e.deliver(bp.UserID, alert, p.Title, false) {
		if err := e.budgets.MarkSent(alert.ID); err != nil {
			e.logger.Error("mark alert sent", "alert_id", alert.ID, "error", err)
		}
		return 1, 1, nil
	}
	return 1, 0, nil
}

// planSpend totals completed-task cost and project cost inside the current
// calendar period, clipped to the plan's own date range.
func (e *Evaluator) planSpend(plan model.BudgetPlan, now time.Time) (float64, error) {
	homeIDs, err := e.homes.ListIDsByUser(plan.UserID, plan.HomeID)
	if err != nil {
		return 0, fmt.Errorf("list homes: %w", err)
	}
	if len(homeIDs) == 0 {
		return 0, nil
	}

	start, end := periodWindow(plan.Period, now)
	if plan.StartDate.After(start) {
		start = plan.StartDate
	}
	if plan.EndDate != nil && plan.EndDate.Before(end) {
		end = *plan.EndDate
	}
	if !start.Before(end) {
		return 0, nil
	}

	taskCost, err := e.tasks.SumCompletedCost(homeIDs, plan.Category, start, end)
	if err != nil {
		return 0, fmt.Errorf("sum task cost: %w", err)
	}
	projectCost, err := e.budgets.SumProjectCost(homeIDs, plan.Category, start, end)
	if err != nil {
		return 0, fmt.Errorf("sum project cost: %w", err)
	}
	return taskCost + projectCost, nil
}

// periodWindow returns the calendar period containing now: month, quarter,
// or year. Unknown periods behave as monthly.
func periodWindow(period string, now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	switch period {
	case model.PeriodAnnual:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	case model.PeriodQuarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		start := time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, 0)
	default:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
}

// deliver sends the alert to the user's primary push subscription and,
// optionally, their email. Returns true when at least one channel succeeded.
func (e *Evaluator) deliver(userID int64, alert *model.BudgetAlert, subject string, withEmail bool) bool {
	delivered := false

	if e.pusher != nil {
		sub, err := e.subs.FirstActiveForUser(userID)
		if err != nil {
			e.logger.Error("load push subscription", "user_id", userID, "error", err)
		} else if sub != nil {
			err := e.pusher.Send(sub, push.Payload{
				Title: "Budget alert",
				Body:  alert.Message,
				Tag:   fmt.Sprintf("budget-alert-%d", alert.ID),
			})
			switch {
			case err == push.ErrExpired:
				if derr := e.subs.Deactivate(sub.ID); derr != nil {
					e.logger.Error("deactivate expired subscription", "sub_id", sub.ID, "error", derr)
				}
			case err != nil:
				e.logger.Warn("push alert failed", "user_id", userID, "error", err)
			default:
				delivered = true
			}
		}
	}

	if withEmail && e.mailer != nil && e.mailer.Configured() {
		user, err := e.users.GetByID(userID)
		if err != nil || user == nil {
			e.logger.Error("load user for alert email", "user_id", userID, "error", err)
		} else if err := e.mailer.SendBudgetAlert(user.Email, subject, alert.Message); err != nil {
			e.logger.Warn("email alert failed", "user_id", userID, "error", err)
		} else {
			delivered = true
		}
	}

	return delivered
}
