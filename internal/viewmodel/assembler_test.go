package viewmodel

import (
	"testing"
	"time"

	"github.com/facilitas/chamado-service/internal/authz"
	"github.com/facilitas/chamado-service/internal/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func strptr(s string) *string { return &s }

func testLookups() Lookups {
	return MapLookups(
		map[string]domain.Sector{
			"sector-3": {ID: "sector-3", Name: "TI"},
		},
		map[string]domain.User{
			"client-1": {ID: "client-1", Name: "Maria"},
			"emp-1":    {ID: "emp-1", Name: "João"},
		},
	)
}

func testActor() authz.Actor {
	return authz.Actor{UserID: "admin-1", Role: domain.RoleAdmin, SectorID: strptr("sector-geral"), InGeneralSector: true}
}

func TestAssembleTicketResolvesReferences(t *testing.T) {
	deadline := testNow.Add(30 * time.Minute)
	ticket := domain.Ticket{
		ID:            "t-1",
		SectorID:      "sector-3",
		RequesterID:   "client-1",
		ResponsibleID: strptr("emp-1"),
		Status:        domain.TicketStatusInProgress,
		CreatedAt:     testNow.Add(-30 * time.Minute),
		Deadline:      &deadline,
	}

	vm := AssembleTicket(ticket, testLookups(), testActor(), testNow)
	if vm.Sector.Name != "TI" {
		t.Fatalf("sector name %q", vm.Sector.Name)
	}
	if vm.Requester.Name != "Maria" {
		t.Fatalf("requester name %q", vm.Requester.Name)
	}
	if vm.ResponsibleLabel() != "João" {
		t.Fatalf("responsible label %q", vm.ResponsibleLabel())
	}
	if vm.PercentageRemaining < 49 || vm.PercentageRemaining > 51 {
		t.Fatalf("percentage %d, want ~50", vm.PercentageRemaining)
	}
	if vm.RemainingLabel == "" {
		t.Fatal("remaining label empty")
	}
	if !vm.Permissions.CanEdit {
		t.Fatal("admin permission flags not attached")
	}
}

func TestAssembleTicketToleratesMissingReferences(t *testing.T) {
	ticket := domain.Ticket{
		ID:            "t-2",
		SectorID:      "sector-unknown",
		RequesterID:   "user-unknown",
		ResponsibleID: strptr("also-unknown"),
		Status:        domain.TicketStatusAwaitingDeadline,
		CreatedAt:     testNow,
	}

	vm := AssembleTicket(ticket, testLookups(), testActor(), testNow)
	if vm.Sector.Name != SectorNotFound {
		t.Fatalf("missing sector rendered %q", vm.Sector.Name)
	}
	if vm.ResponsibleLabel() != Unassigned {
		t.Fatalf("missing responsible rendered %q", vm.ResponsibleLabel())
	}
	if vm.PercentageRemaining != 0 {
		t.Fatalf("ticket without deadline got percentage %d", vm.PercentageRemaining)
	}
}

func TestAssembleTicketNilLookups(t *testing.T) {
	ticket := domain.Ticket{ID: "t-3", SectorID: "sector-3", RequesterID: "client-1"}
	vm := AssembleTicket(ticket, Lookups{}, testActor(), testNow)
	if vm.Sector.Name != SectorNotFound {
		t.Fatal("nil lookups did not degrade to placeholder")
	}
}

func TestAssembleListSortsNewestFirst(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "old", RequesterID: "client-1", SectorID: "sector-3", CreatedAt: testNow.Add(-2 * time.Hour)},
		{ID: "new", RequesterID: "client-1", SectorID: "sector-3", CreatedAt: testNow.Add(-time.Minute)},
		{ID: "mid", RequesterID: "client-1", SectorID: "sector-3", CreatedAt: testNow.Add(-time.Hour)},
	}
	vms := AssembleList(tickets, testLookups(), testActor(), testNow)
	if len(vms) != 3 {
		t.Fatalf("got %d view-models", len(vms))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if vms[i].Ticket.ID != want {
			t.Fatalf("position %d has %q, want %q", i, vms[i].Ticket.ID, want)
		}
	}
}

func TestAssembleListFiltersClientToOwnTickets(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "mine", RequesterID: "client-1", SectorID: "sector-3", CreatedAt: testNow},
		{ID: "theirs", RequesterID: "client-2", SectorID: "sector-3", CreatedAt: testNow},
	}
	client := authz.Actor{UserID: "client-1", Role: domain.RoleClient}
	vms := AssembleList(tickets, testLookups(), client, testNow)
	if len(vms) != 1 || vms[0].Ticket.ID != "mine" {
		t.Fatalf("client filter returned %+v", vms)
	}

	staff := authz.Actor{UserID: "emp-1", Role: domain.RoleEmployee, SectorID: strptr("sector-3")}
	vms = AssembleList(tickets, testLookups(), staff, testNow)
	if len(vms) != 2 {
		t.Fatalf("staff sees %d tickets, want 2", len(vms))
	}
}
