package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"cinema-ticket/config"
	"cinema-ticket/internal/pricing"
	"cinema-ticket/internal/services"
	"cinema-ticket/internal/store"
	"cinema-ticket/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const demoBuyer = "demo"

var demoMovies = []models.Movie{
	{Title: "The Last Projectionist", Description: "A night-shift projectionist finds a reel that was never released.", DurationMin: 118, Rating: "PG-13", Status: "now_showing"},
	{Title: "Harbor Lights", Description: "Two sisters reopen their late father's seaside cinema.", DurationMin: 104, Rating: "PG", Status: "now_showing"},
	{Title: "Orbitfall", Description: "A salvage crew races a failing station back to Earth.", DurationMin: 132, Rating: "PG-13", Status: "now_showing"},
	{Title: "Paper Tigers", Description: "An animated heist through a city made of origami.", DurationMin: 95, Rating: "G", Status: "coming_soon"},
}

// Evening screenings cost more than matinees.
var demoSlots = []struct {
	hour, minute int
	surcharge    decimal.Decimal
}{
	{13, 0, decimal.Zero},
	{16, 15, decimal.Zero},
	{19, 30, decimal.NewFromInt(2)},
	{22, 0, decimal.NewFromInt(2)},
}

func newSeedCommand(app core.App, cfg *config.Config, seats *services.SeatService) *cobra.Command {
	var (
		days        int
		bookedRatio float64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Creates demo movies and showtimes with part of each room already sold",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.RunAllMigrations(); err != nil {
				return err
			}
			s := &seeder{
				store:       store.New(app),
				seats:       seats,
				layout:      pricing.DefaultLayout(),
				basePrice:   cfg.DefaultBasePrice,
				bookedRatio: bookedRatio,
				rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
			}
			return s.run(cmd.Context(), time.Now().UTC(), days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 3, "number of days of showtimes to create")
	cmd.Flags().Float64Var(&bookedRatio, "booked-ratio", 0.3, "share of seats pre-sold in every showtime")
	return cmd
}

type seeder struct {
	store       *store.Store
	seats       *services.SeatService
	layout      pricing.Layout
	basePrice   decimal.Decimal
	bookedRatio float64
	rand        *rand.Rand
}

func (s *seeder) run(ctx context.Context, now time.Time, days int) error {
	showing := 0
	for i := range demoMovies {
		m := demoMovies[i]
		if err := s.store.CreateMovie(ctx, &m); err != nil {
			return fmt.Errorf("create movie %q: %w", m.Title, err)
		}
		if m.Status != "now_showing" {
			continue
		}

		screen := fmt.Sprintf("Screen %d", showing+1)
		showing++
		for day := 0; day < days; day++ {
			date := now.AddDate(0, 0, day).Truncate(24 * time.Hour)
			for _, slot := range demoSlots {
				st := models.Showtime{
					MovieID:   m.ID,
					Screen:    screen,
					StartsAt:  date.Add(time.Duration(slot.hour)*time.Hour + time.Duration(slot.minute)*time.Minute),
					BasePrice: s.basePrice.Add(slot.surcharge),
				}
				if st.StartsAt.Before(now) {
					continue
				}
				if err := s.store.CreateShowtime(ctx, &st); err != nil {
					return fmt.Errorf("create showtime: %w", err)
				}
				if err := s.sellDemoSeats(ctx, st); err != nil {
					return err
				}
			}
		}
	}

	slog.Info("Seeded demo data", "movies", len(demoMovies), "days", days)
	return nil
}

func (s *seeder) sellDemoSeats(ctx context.Context, st models.Showtime) error {
	m := pricing.Generate(s.layout, st.BasePrice, pricing.Options{
		BookedRatio: s.bookedRatio,
		Rand:        s.rand,
	})
	sold := lo.FilterMap(m.Seats, func(seat pricing.Seat, _ int) (string, bool) {
		return seat.ID, seat.Status == pricing.StatusBooked
	})
	if len(sold) == 0 {
		return nil
	}
	_, err := s.seats.SellFree(ctx, st.ID, sold, demoBuyer)
	return err
}
