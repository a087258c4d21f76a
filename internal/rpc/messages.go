package rpc

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/roommates/internal/calculator"
	"github.com/mmynk/roommates/internal/models"
	"github.com/mmynk/roommates/internal/service"
)

// Wire messages. Dates travel as YYYY-MM-DD (DDMMYYYY is accepted on input)
// and amounts as decimal strings with two places.

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Status      string `json:"status,omitempty"`
	HouseholdID string `json:"household_id,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

type Household struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

type Task struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	DueDate     string   `json:"due_date"`
	Frequency   string   `json:"frequency"`
	Complete    bool     `json:"complete"`
	CurrentID   string   `json:"current_id,omitempty"`
	Rotation    []string `json:"rotation"`
	HouseholdID string   `json:"household_id"`
}

type CompletedTask struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RoommateID string `json:"roommate_id"`
	Date       string `json:"date"`
}

type Bill struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	TotalBalance string   `json:"total_balance"`
	DueDate      string   `json:"due_date"`
	Frequency    string   `json:"frequency"`
	IsActive     bool     `json:"is_active"`
	ManagerID    string   `json:"manager_id"`
	Participants []string `json:"participants"`
	NumSplit     int      `json:"num_split"`
	Period       int      `json:"period"`
	HouseholdID  string   `json:"household_id"`
}

type BillCycle struct {
	ID          string `json:"id"`
	BillID      string `json:"bill_id"`
	Period      int    `json:"period"`
	RecipientID string `json:"recipient_id"`
	Amount      string `json:"amount"`
	IsPaid      bool   `json:"is_paid"`
	DatePaid    string `json:"date_paid,omitempty"`
}

type MemberBalance struct {
	MemberID   string `json:"member_id"`
	NetBalance string `json:"net_balance"`
	TotalOwed  string `json:"total_owed"`
	TotalDue   string `json:"total_due"`
}

type Debt struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type Empty struct{}

// Auth

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Users

type UserResponse struct {
	User *User `json:"user"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Status    *string `json:"status,omitempty"`

	// HouseholdID joins a household; an empty string leaves the current one.
	HouseholdID *string `json:"household_id,omitempty"`
}

// Households

type CreateHouseholdRequest struct {
	Name string `json:"name"`
}

type UpdateHouseholdRequest struct {
	Name string `json:"name"`
}

type DeleteHouseholdRequest struct {
	HouseholdID string `json:"household_id"`
}

type HouseholdResponse struct {
	Household *Household `json:"household"`
}

type HomepageResponse struct {
	Household *Household `json:"household"`
	Members   []*User    `json:"members"`
}

// Tasks

type CreateTaskRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	DueDate     string   `json:"due_date"`
	Frequency   string   `json:"frequency"`
	CurrentID   string   `json:"current_id"`
	Rotation    []string `json:"rotation"`
}

type UpdateTaskRequest struct {
	TaskID      string  `json:"task_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Frequency   *string `json:"frequency,omitempty"`
	CurrentID   *string `json:"current_id,omitempty"`
	Complete    *bool   `json:"complete,omitempty"`
}

type TaskRequest struct {
	TaskID string `json:"task_id"`
}

type TaskResponse struct {
	Task *Task `json:"task"`
}

type TaskResultResponse struct {
	Task     *Task          `json:"task"`
	Record   *CompletedTask `json:"record,omitempty"`
	Archived bool           `json:"archived"`
}

type RotationRequest struct {
	TaskID  string   `json:"task_id"`
	UserIDs []string `json:"user_ids"`
}

type RotationResponse struct {
	Task    *Task `json:"task"`
	Changed int   `json:"changed"`
}

type ListTasksResponse struct {
	Tasks []*Task `json:"tasks"`
}

type ListCompletedTasksResponse struct {
	Records []*CompletedTask `json:"records"`
}

// Bills

type CreateBillRequest struct {
	Name         string   `json:"name"`
	TotalBalance string   `json:"total_balance"`
	DueDate      string   `json:"due_date"`
	Frequency    string   `json:"frequency"`
	ManagerID    string   `json:"manager_id"`
	Participants []string `json:"participants"`
}

type UpdateBillRequest struct {
	BillID       string  `json:"bill_id"`
	Name         *string `json:"name,omitempty"`
	TotalBalance *string `json:"total_balance,omitempty"`
	DueDate      *string `json:"due_date,omitempty"`
	Frequency    *string `json:"frequency,omitempty"`
	ManagerID    *string `json:"manager_id,omitempty"`
}

type BillRequest struct {
	BillID string `json:"bill_id"`
}

type BillResponse struct {
	Bill *Bill `json:"bill"`
}

type ParticipantsRequest struct {
	BillID  string   `json:"bill_id"`
	UserIDs []string `json:"user_ids"`
}

type ParticipantsResponse struct {
	Bill    *Bill `json:"bill"`
	Changed int   `json:"changed"`
}

type ActivateBillResponse struct {
	Bill   *Bill        `json:"bill"`
	Cycles []*BillCycle `json:"cycles"`
}

type DeactivateBillResponse struct {
	Bill     *Bill `json:"bill"`
	Archived bool  `json:"archived"`
}

type PayCycleRequest struct {
	BillID string `json:"bill_id"`

	// RecipientID defaults to the caller.
	RecipientID string `json:"recipient_id,omitempty"`
}

type CycleResponse struct {
	Cycle *BillCycle `json:"cycle"`
}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

type ListCyclesResponse struct {
	Cycles []*BillCycle `json:"cycles"`
}

type BalancesResponse struct {
	Members []*MemberBalance `json:"members"`
	Debts   []*Debt          `json:"debts"`
}

// Conversions

func money(d decimal.Decimal) string {
	return d.StringFixed(calculator.CurrencyPlaces)
}

func toUser(u *models.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Status:      u.Status,
		HouseholdID: u.HouseholdID,
		CreatedAt:   u.CreatedAt,
	}
}

func toHousehold(h *models.Household) *Household {
	return &Household{ID: h.ID, Name: h.Name, CreatedAt: h.CreatedAt}
}

func toTask(t *models.Task) *Task {
	rotation := make([]string, len(t.Rotation))
	copy(rotation, t.Rotation)
	return &Task{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		DueDate:     models.FormatDate(t.DueDate),
		Frequency:   t.Frequency.String(),
		Complete:    t.Complete,
		CurrentID:   t.CurrentID,
		Rotation:    rotation,
		HouseholdID: t.HouseholdID,
	}
}

func toTasks(tasks []*models.Task) []*Task {
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[i] = toTask(t)
	}
	return out
}

func toCompletedTask(r *models.CompletedTask) *CompletedTask {
	return &CompletedTask{
		ID:         r.ID,
		Name:       r.Name,
		RoommateID: r.RoommateID,
		Date:       models.FormatDate(r.Date),
	}
}

func toTaskResult(r *service.TaskResult) *TaskResultResponse {
	resp := &TaskResultResponse{Task: toTask(r.Task), Archived: r.Archived}
	if r.Record != nil {
		resp.Record = toCompletedTask(r.Record)
	}
	return resp
}

func toBill(b *models.Bill) *Bill {
	participants := make([]string, len(b.Participants))
	copy(participants, b.Participants)
	return &Bill{
		ID:           b.ID,
		Name:         b.Name,
		TotalBalance: money(b.TotalBalance),
		DueDate:      models.FormatDate(b.DueDate),
		Frequency:    b.Frequency.String(),
		IsActive:     b.IsActive,
		ManagerID:    b.ManagerID,
		Participants: participants,
		NumSplit:     b.NumSplit(),
		Period:       b.Period,
		HouseholdID:  b.HouseholdID,
	}
}

func toBills(bills []*models.Bill) []*Bill {
	out := make([]*Bill, len(bills))
	for i, b := range bills {
		out[i] = toBill(b)
	}
	return out
}

func toCycle(c *models.BillCycle) *BillCycle {
	out := &BillCycle{
		ID:          c.ID,
		BillID:      c.BillID,
		Period:      c.Period,
		RecipientID: c.RecipientID,
		Amount:      money(c.Amount),
		IsPaid:      c.IsPaid,
	}
	if c.DatePaid != nil {
		out.DatePaid = models.FormatDate(*c.DatePaid)
	}
	return out
}

func toCycles(cycles []models.BillCycle) []*BillCycle {
	out := make([]*BillCycle, len(cycles))
	for i := range cycles {
		out[i] = toCycle(&cycles[i])
	}
	return out
}

func toBalances(sheet *service.BalanceSheet) *BalancesResponse {
	resp := &BalancesResponse{
		Members: make([]*MemberBalance, len(sheet.Members)),
		Debts:   make([]*Debt, len(sheet.Debts)),
	}
	for i, m := range sheet.Members {
		resp.Members[i] = &MemberBalance{
			MemberID:   m.MemberID,
			NetBalance: money(m.NetBalance),
			TotalOwed:  money(m.TotalOwed),
			TotalDue:   money(m.TotalDue),
		}
	}
	for i, d := range sheet.Debts {
		resp.Debts[i] = &Debt{From: d.From, To: d.To, Amount: money(d.Amount)}
	}
	return resp
}

func parseDate(field, s string) (time.Time, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return time.Time{}, invalidArgument(field, err)
	}
	return d, nil
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalidArgument(field, err)
	}
	return d, nil
}
