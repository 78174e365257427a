package booking

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainbooking "staymarket/internal/domain/booking"
	"staymarket/internal/domain/pricing"
	domainuser "staymarket/internal/domain/user"
)

type staticHasher struct{}

func (staticHasher) Hash(string) (string, error) { return "hashed", nil }

func TestCreateHostBookingProvisionsGuestAccount(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 8700, true)

	handler := &CreateHostBookingHandler{
		Fees:      pricing.DefaultPolicy("USD"),
		Passwords: staticHasher{},
	}
	cmd := CreateHostBookingCommand{
		CommandID:  "bk-1",
		HostID:     "host-1",
		PropertyID: "prop-1",
		GuestName:  "Walkin Guest",
		GuestEmail: "Walkin@Example.com",
		CheckIn:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		Adults:     2,
		Payment:    "cash",
	}
	result, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	require.Equal(t, "bk-1", result.BookingID)

	account, err := factory.UserRepo.ByEmail(ctx, "walkin@example.com")
	require.NoError(t, err)
	require.True(t, account.HasRole(domainuser.RoleGuest))
	require.Equal(t, "hashed", account.PasswordHash)

	// A second manual booking for the same email reuses the account.
	cmd.CommandID = "bk-2"
	_, err = handler.Handle(ctx, cmd)
	require.NoError(t, err)
	second, err := factory.BookingRepo.ByID(ctx, "bk-2")
	require.NoError(t, err)
	require.Equal(t, string(account.ID), second.GuestID)
}

func TestCreateHostBookingRejectsForeignProperty(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 8700, true)

	handler := &CreateHostBookingHandler{
		Fees:      pricing.DefaultPolicy("USD"),
		Passwords: staticHasher{},
	}
	_, err := handler.Handle(ctx, CreateHostBookingCommand{
		CommandID:  "bk-1",
		HostID:     "host-2",
		PropertyID: "prop-1",
		GuestName:  "Walkin Guest",
		GuestEmail: "walkin@example.com",
		CheckIn:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		Adults:     1,
	})
	require.ErrorIs(t, err, ErrBookingNotOwned)
}

func TestSetBookingStatusAndRemove(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 8700, true)

	create := &CreateHostBookingHandler{Fees: pricing.DefaultPolicy("USD"), Passwords: staticHasher{}}
	_, err := create.Handle(ctx, CreateHostBookingCommand{
		CommandID:  "bk-1",
		HostID:     "host-1",
		PropertyID: "prop-1",
		GuestName:  "Walkin Guest",
		GuestEmail: "walkin@example.com",
		CheckIn:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		Adults:     1,
	})
	require.NoError(t, err)

	setStatus := &SetBookingStatusHandler{}
	result, err := setStatus.Handle(ctx, SetBookingStatusCommand{HostID: "host-1", BookingID: "bk-1", Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, "completed", result.Status)

	_, err = setStatus.Handle(ctx, SetBookingStatusCommand{HostID: "host-1", BookingID: "bk-1", Status: "paused"})
	require.ErrorIs(t, err, domainbooking.ErrUnknownStatus)

	_, err = setStatus.Handle(ctx, SetBookingStatusCommand{HostID: "host-2", BookingID: "bk-1", Status: "cancelled"})
	require.ErrorIs(t, err, ErrBookingNotOwned)

	remove := &RemoveBookingHandler{}
	_, err = remove.Handle(ctx, RemoveBookingCommand{HostID: "host-1", BookingID: "bk-1"})
	require.NoError(t, err)
	_, err = factory.BookingRepo.ByID(ctx, "bk-1")
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestListHostBookingsFiltersByStatus(t *testing.T) {
	factory, ctx := newBookingEnv(t)
	seedProperty(t, ctx, factory, "prop-1", "host-1", 8700, true)

	create := &CreateHostBookingHandler{Fees: pricing.DefaultPolicy("USD"), Passwords: staticHasher{}}
	for i := 0; i < 3; i++ {
		_, err := create.Handle(ctx, CreateHostBookingCommand{
			CommandID:  fmt.Sprintf("bk-%d", i),
			HostID:     "host-1",
			PropertyID: "prop-1",
			GuestName:  "Walkin Guest",
			GuestEmail: "walkin@example.com",
			CheckIn:    time.Date(2026, 10, 1+i, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2026, 10, 3+i, 0, 0, 0, 0, time.UTC),
			Adults:     1,
		})
		require.NoError(t, err)
	}
	setStatus := &SetBookingStatusHandler{}
	_, err := setStatus.Handle(ctx, SetBookingStatusCommand{HostID: "host-1", BookingID: "bk-0", Status: "confirmed"})
	require.NoError(t, err)

	list := &ListHostBookingsHandler{UoWFactory: factory}
	all, err := list.Handle(ctx, ListHostBookingsQuery{HostID: "host-1"})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)

	confirmed, err := list.Handle(ctx, ListHostBookingsQuery{HostID: "host-1", Status: "confirmed"})
	require.NoError(t, err)
	require.Len(t, confirmed.Items, 1)
	require.Equal(t, "bk-0", confirmed.Items[0].ID)

	_, err = list.Handle(ctx, ListHostBookingsQuery{HostID: "host-1", Status: "bogus"})
	require.ErrorIs(t, err, domainbooking.ErrUnknownStatus)
}
