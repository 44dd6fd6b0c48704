package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/repository"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	seq     int
	nowFn   func() time.Time
}

func newFakeTicketRepo(nowFn func() time.Time) *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, nowFn: nowFn}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.Version = 1
	ticket.CreatedAt = r.nowFn()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	ticket.UpdatedAt = r.nowFn()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.SectorID != nil && ticket.SectorID != *filter.SectorID {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) ListExpired(_ context.Context, now time.Time, _ int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.OverdueAt(now) {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) CountByStatus(_ context.Context, sectorID *string) (map[domain.TicketStatus]int64, error) {
	counts := map[domain.TicketStatus]int64{}
	for _, ticket := range r.tickets {
		if sectorID != nil && ticket.SectorID != *sectorID {
			continue
		}
		counts[ticket.Status]++
	}
	return counts, nil
}

type fakeSectorRepo struct {
	sectors map[string]domain.Sector
}

func (r *fakeSectorRepo) Create(_ context.Context, sector *domain.Sector) error {
	r.sectors[sector.ID] = *sector
	return nil
}

func (r *fakeSectorRepo) Update(_ context.Context, sector *domain.Sector) error {
	if _, ok := r.sectors[sector.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.sectors[sector.ID] = *sector
	return nil
}

func (r *fakeSectorRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.sectors[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.sectors, id)
	return nil
}

func (r *fakeSectorRepo) GetByID(_ context.Context, id string) (*domain.Sector, error) {
	sector, ok := r.sectors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &sector, nil
}

func (r *fakeSectorRepo) List(_ context.Context) ([]domain.Sector, error) {
	out := make([]domain.Sector, 0, len(r.sectors))
	for _, sector := range r.sectors {
		out = append(out, sector)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListBySector(_ context.Context, sectorID string) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if user.SectorID != nil && *user.SectorID == sectorID {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakePolicyRepo struct {
	policies map[string]domain.DeadlinePolicy
}

func (r *fakePolicyRepo) Create(_ context.Context, policy *domain.DeadlinePolicy) error {
	r.policies[policy.ID] = *policy
	return nil
}

func (r *fakePolicyRepo) Update(_ context.Context, policy *domain.DeadlinePolicy) error {
	if _, ok := r.policies[policy.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.policies[policy.ID] = *policy
	return nil
}

func (r *fakePolicyRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.policies[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.policies, id)
	return nil
}

func (r *fakePolicyRepo) GetByID(_ context.Context, id string) (*domain.DeadlinePolicy, error) {
	policy, ok := r.policies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &policy, nil
}

func (r *fakePolicyRepo) ListForSector(_ context.Context, sectorID *string) ([]domain.DeadlinePolicy, error) {
	var out []domain.DeadlinePolicy
	for _, policy := range r.policies {
		if sectorID == nil || policy.Unscoped() || *policy.SectorID == *sectorID {
			out = append(out, policy)
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	entry.ID = fmt.Sprintf("history-%d", len(r.entries)+1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketHistory, error) {
	var out []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type serviceFixture struct {
	svc     *TicketService
	tickets *fakeTicketRepo
	history *fakeHistoryRepo
	now     time.Time
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	nowFn := func() time.Time { return now }

	generalID := "sector-general"
	supportID := "sector-support"
	sectors := &fakeSectorRepo{sectors: map[string]domain.Sector{
		generalID: {ID: generalID, Name: "GERAL"},
		supportID: {ID: supportID, Name: "Suporte"},
	}}
	users := &fakeUserRepo{users: map[string]domain.User{
		"admin-1":    {ID: "admin-1", Name: "Alice", Role: domain.RoleAdmin, SectorID: &generalID, Active: true},
		"manager-1":  {ID: "manager-1", Name: "Marcos", Role: domain.RoleManager, SectorID: &supportID, Active: true},
		"employee-1": {ID: "employee-1", Name: "Eva", Role: domain.RoleEmployee, SectorID: &supportID, Active: true},
		"client-1":   {ID: "client-1", Name: "Carla", Role: domain.RoleClient, Active: true},
		"client-2":   {ID: "client-2", Name: "Caio", Role: domain.RoleClient, Active: true},
	}}
	supportScope := supportID
	policies := &fakePolicyRepo{policies: map[string]domain.DeadlinePolicy{
		"policy-2h":      {ID: "policy-2h", Title: "Duas horas", Duration: "PT2H"},
		"policy-support": {ID: "policy-support", Title: "Suporte padrao", SectorID: &supportScope, Duration: "PT30M"},
	}}
	tickets := newFakeTicketRepo(nowFn)
	history := &fakeHistoryRepo{}

	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		SectorRepo:  sectors,
		UserRepo:    users,
		PolicyRepo:  policies,
		HistoryRepo: history,
		Now:         nowFn,
	})
	return &serviceFixture{svc: svc, tickets: tickets, history: history, now: now}
}

func (f *serviceFixture) principal(t *testing.T, userID string, inGeneral bool) *auth.Principal {
	t.Helper()
	user, err := f.svc.users.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("fixture user %s: %v", userID, err)
	}
	return &auth.Principal{User: user, InGeneralSector: inGeneral}
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	return domainErr.Code
}

func TestCreateTicketWithoutPolicyAwaitsDeadline(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Impressora parada",
		Description: "A impressora do segundo andar nao responde.",
		SectorID:    "sector-support",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusAwaitingDeadline {
		t.Fatalf("status = %s, want %s", ticket.Status, domain.TicketStatusAwaitingDeadline)
	}
	if ticket.Deadline != nil {
		t.Fatalf("deadline should be unset, got %v", ticket.Deadline)
	}
	if ticket.RequesterID != "client-1" {
		t.Fatalf("requester = %s, want client-1", ticket.RequesterID)
	}
}

func TestCreateTicketWithPolicyOpensWithDeadline(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	policyID := "policy-2h"

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Acesso bloqueado",
		Description: "Nao consigo entrar no sistema financeiro.",
		SectorID:    "sector-support",
		PolicyID:    &policyID,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %s, want %s", ticket.Status, domain.TicketStatusOpen)
	}
	want := f.now.Add(2 * time.Hour)
	if ticket.Deadline == nil || !ticket.Deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", ticket.Deadline, want)
	}
}

func TestCreateTicketOnBehalfRequiresStaff(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	other := "client-2"

	_, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Chamado alheio",
		Description: "Tentativa de abrir em nome de outro usuario.",
		SectorID:    "sector-support",
		RequesterID: &other,
	})
	if err == nil {
		t.Fatal("expected error for client filing on behalf of another user")
	}
	if code := errorCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}

	manager := f.principal(t, "manager-1", false)
	ticket, err := f.svc.CreateTicket(context.Background(), manager, TicketCreateInput{
		Title:       "Chamado em nome do cliente",
		Description: "Registrado por telefone pelo gerente.",
		SectorID:    "sector-support",
		RequesterID: &other,
	})
	if err != nil {
		t.Fatalf("staff on-behalf create: %v", err)
	}
	if ticket.RequesterID != other {
		t.Fatalf("requester = %s, want %s", ticket.RequesterID, other)
	}
}

func TestCompleteTicketRejectsShortNote(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	manager := f.principal(t, "manager-1", false)
	policyID := "policy-2h"

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Monitor piscando",
		Description: "O monitor pisca a cada poucos segundos.",
		SectorID:    "sector-support",
		PolicyID:    &policyID,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	_, err = f.svc.CompleteTicket(context.Background(), manager, ticket.ID, "curto")
	if err == nil {
		t.Fatal("expected short completion note to be rejected")
	}
	if code := errorCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}

	stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusOpen {
		t.Fatalf("rejected completion must not change status, got %s", stored.Status)
	}

	note := strings.Repeat("cabo trocado ", 3)
	done, err := f.svc.CompleteTicket(context.Background(), manager, ticket.ID, note)
	if err != nil {
		t.Fatalf("CompleteTicket: %v", err)
	}
	if done.Status != domain.TicketStatusCompleted {
		t.Fatalf("status = %s, want %s", done.Status, domain.TicketStatusCompleted)
	}
	if done.CompletionNote == nil || *done.CompletionNote != strings.TrimSpace(note) {
		t.Fatalf("completion note not stored: %v", done.CompletionNote)
	}
}

func TestAssignTicketReanchorsDeadline(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	manager := f.principal(t, "manager-1", false)

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Sem internet",
		Description: "A rede caiu na ala norte do predio.",
		SectorID:    "sector-support",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	assigned, err := f.svc.AssignTicket(context.Background(), manager, ticket.ID, "employee-1", "policy-support")
	if err != nil {
		t.Fatalf("AssignTicket: %v", err)
	}
	if assigned.Status != domain.TicketStatusInProgress {
		t.Fatalf("status = %s, want %s", assigned.Status, domain.TicketStatusInProgress)
	}
	if assigned.ResponsibleID == nil || *assigned.ResponsibleID != "employee-1" {
		t.Fatalf("responsible = %v, want employee-1", assigned.ResponsibleID)
	}
	want := f.now.Add(30 * time.Minute)
	if assigned.Deadline == nil || !assigned.Deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", assigned.Deadline, want)
	}

	var sawResponsible, sawDeadline bool
	for _, entry := range f.history.entries {
		switch entry.ChangeType {
		case domain.ChangeTypeResponsible:
			sawResponsible = true
		case domain.ChangeTypeDeadline:
			sawDeadline = true
		}
	}
	if !sawResponsible || !sawDeadline {
		t.Fatalf("assignment must record responsible and deadline history, got %+v", f.history.entries)
	}
}

func TestAssignTicketPolicyMustMatchSector(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	admin := f.principal(t, "admin-1", true)

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Pedido de acesso",
		Description: "Preciso de acesso ao repositorio interno.",
		SectorID:    "sector-general",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	// policy-support is scoped to sector-support and must not apply here.
	_, err = f.svc.AssignTicket(context.Background(), admin, ticket.ID, "employee-1", "policy-support")
	if err == nil {
		t.Fatal("expected sector-scoped policy to be rejected")
	}
	if code := errorCode(t, err); code != "CONFLICT" {
		t.Fatalf("code = %s, want CONFLICT", code)
	}
}

func TestClientCannotStartOrAssign(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	policyID := "policy-2h"

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Teclado quebrado",
		Description: "Varias teclas pararam de funcionar.",
		SectorID:    "sector-support",
		PolicyID:    &policyID,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if _, err := f.svc.StartTicket(context.Background(), client, ticket.ID); err == nil {
		t.Fatal("client must not start tickets")
	}
	if _, err := f.svc.AssignTicket(context.Background(), client, ticket.ID, "employee-1", "policy-2h"); err == nil {
		t.Fatal("client must not assign tickets")
	}

	employee := f.principal(t, "employee-1", false)
	if _, err := f.svc.StartTicket(context.Background(), employee, ticket.ID); err == nil {
		t.Fatal("employee without triage rights must not start tickets")
	}
}

func TestStartTicketRejectsDeadlineLessTicket(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	manager := f.principal(t, "manager-1", false)

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Cadeira quebrada",
		Description: "O encosto da cadeira da recepcao soltou.",
		SectorID:    "sector-support",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	_, err = f.svc.StartTicket(context.Background(), manager, ticket.ID)
	if err == nil {
		t.Fatal("starting an AGUARDANDO_PRAZO ticket must fail; it has no deadline to expire against")
	}
	if code := errorCode(t, err); code != "CONFLICT" {
		t.Fatalf("code = %s, want CONFLICT", code)
	}
	stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusAwaitingDeadline || stored.Deadline != nil {
		t.Fatalf("rejected start mutated ticket: status=%s deadline=%v", stored.Status, stored.Deadline)
	}

	// Assignment remains the way out of AGUARDANDO_PRAZO.
	assigned, err := f.svc.AssignTicket(context.Background(), manager, ticket.ID, "employee-1", "policy-support")
	if err != nil {
		t.Fatalf("AssignTicket: %v", err)
	}
	if assigned.Status != domain.TicketStatusInProgress || assigned.Deadline == nil {
		t.Fatalf("assignment must anchor a deadline: status=%s deadline=%v", assigned.Status, assigned.Deadline)
	}
}

func TestExpireTicketIsIdempotent(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	policyID := "policy-2h"

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Backup falhou",
		Description: "O job noturno de backup abortou com erro.",
		SectorID:    "sector-support",
		PolicyID:    &policyID,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	past := f.now.Add(3 * time.Hour)
	changed, err := f.svc.ExpireTicket(context.Background(), ticket.ID, past)
	if err != nil {
		t.Fatalf("ExpireTicket: %v", err)
	}
	if !changed {
		t.Fatal("first expiry pass must flip the ticket")
	}

	again, err := f.svc.ExpireTicket(context.Background(), ticket.ID, past)
	if err != nil {
		t.Fatalf("second ExpireTicket: %v", err)
	}
	if again {
		t.Fatal("second expiry pass must be a no-op")
	}

	stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	if stored.Status != domain.TicketStatusOverdue {
		t.Fatalf("status = %s, want %s", stored.Status, domain.TicketStatusOverdue)
	}
}

func TestListTicketsScopesClientsToOwn(t *testing.T) {
	f := newFixture(t)
	carla := f.principal(t, "client-1", false)
	caio := f.principal(t, "client-2", false)

	for i, p := range []*auth.Principal{carla, carla, caio} {
		if _, err := f.svc.CreateTicket(context.Background(), p, TicketCreateInput{
			Title:       fmt.Sprintf("Chamado %d", i),
			Description: "Descricao suficientemente detalhada do problema.",
			SectorID:    "sector-support",
		}); err != nil {
			t.Fatalf("CreateTicket %d: %v", i, err)
		}
	}

	mine, err := f.svc.ListTickets(context.Background(), carla, TicketListFilter{})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("client list size = %d, want 2", len(mine))
	}
	for _, vm := range mine {
		if vm.Ticket.RequesterID != "client-1" {
			t.Fatalf("client saw foreign ticket %s", vm.Ticket.ID)
		}
	}

	manager := f.principal(t, "manager-1", false)
	all, err := f.svc.ListTickets(context.Background(), manager, TicketListFilter{})
	if err != nil {
		t.Fatalf("manager ListTickets: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("staff list size = %d, want 3", len(all))
	}
}

func TestDeleteTicketAllowsSectorlessRequester(t *testing.T) {
	f := newFixture(t)
	carla := f.principal(t, "client-1", false)
	caio := f.principal(t, "client-2", false)

	ticket, err := f.svc.CreateTicket(context.Background(), carla, TicketCreateInput{
		Title:       "Chamado aberto por engano",
		Description: "Abri este chamado no setor errado, pode remover.",
		SectorID:    "sector-support",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if err := f.svc.DeleteTicket(context.Background(), caio, ticket.ID); err == nil {
		t.Fatal("client must not delete another requester's ticket")
	} else if code := errorCode(t, err); code != "FORBIDDEN" {
		t.Fatalf("code = %s, want FORBIDDEN", code)
	}

	if err := f.svc.DeleteTicket(context.Background(), carla, ticket.ID); err != nil {
		t.Fatalf("sectorless requester deleting own ticket: %v", err)
	}
	if _, err := f.tickets.GetByID(context.Background(), ticket.ID); err == nil {
		t.Fatal("ticket still present after delete")
	}
}

func TestUpdateConflictSurfacesAsConflict(t *testing.T) {
	f := newFixture(t)
	client := f.principal(t, "client-1", false)
	manager := f.principal(t, "manager-1", false)
	policyID := "policy-2h"

	ticket, err := f.svc.CreateTicket(context.Background(), client, TicketCreateInput{
		Title:       "Disco cheio",
		Description: "O servidor de arquivos atingiu 100% de uso.",
		SectorID:    "sector-support",
		PolicyID:    &policyID,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	stale, err := f.tickets.GetByID(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if _, err := f.svc.StartTicket(context.Background(), manager, ticket.ID); err != nil {
		t.Fatalf("StartTicket: %v", err)
	}

	// The stale copy now carries an outdated version.
	err = f.svc.updateTicket(context.Background(), stale)
	if err == nil {
		t.Fatal("expected stale update to fail")
	}
	if code := errorCode(t, err); code != "CONFLICT" {
		t.Fatalf("code = %s, want CONFLICT", code)
	}
}
