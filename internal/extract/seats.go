package extract

import (
	"context"
	"fmt"

	"github.com/dkarlov/faretrack/internal/snapshot"
)

// SeatCategory identifies one of the four independently-counted seat-map
// element categories.
type SeatCategory int

const (
	StandardOccupied SeatCategory = iota
	StandardAvailable
	PreferredOccupied
	PreferredAvailable
)

// SeatTab is one visible seat-map tab on the results page. Activating a tab
// swaps the visible seat grid; counts are only meaningful after activation.
type SeatTab interface {
	Activate(ctx context.Context) error
	Count(category SeatCategory) (int, error)
}

// ReadSeatInventories activates each tab in document order and counts the
// four seat categories to form one inventory per tab. Tabs share one mutable
// UI session, so activation is strictly sequential.
func ReadSeatInventories(ctx context.Context, tabs []SeatTab) ([]snapshot.SeatInventory, error) {
	inventories := make([]snapshot.SeatInventory, 0, len(tabs))
	for i, tab := range tabs {
		if err := tab.Activate(ctx); err != nil {
			return nil, fmt.Errorf("failed to activate seat tab %d: %w", i, err)
		}

		var inv snapshot.SeatInventory
		counts := []struct {
			category SeatCategory
			dest     *int
		}{
			{StandardOccupied, &inv.StandardOccupied},
			{StandardAvailable, &inv.StandardAvailable},
			{PreferredOccupied, &inv.PreferredOccupied},
			{PreferredAvailable, &inv.PreferredAvailable},
		}
		for _, c := range counts {
			n, err := tab.Count(c.category)
			if err != nil {
				return nil, fmt.Errorf("failed to count seats on tab %d: %w", i, err)
			}
			*c.dest = n
		}

		inventories = append(inventories, inv)
	}
	return inventories, nil
}
