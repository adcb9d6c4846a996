package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qmerle/simbot/internal/domain"
	"github.com/qmerle/simbot/internal/services/promptbuilder"
)

// BBOFetcher fetches the best bid/offer for a perpetual market.
type BBOFetcher interface {
	BBO(ctx context.Context, market string) (*domain.BBO, error)
}

// WatchlistGetter reads the markets watched in a room.
type WatchlistGetter interface {
	Get(ctx context.Context, roomID uuid.UUID) ([]string, error)
}

// OrderBookProvider renders best bid/offer for every watchlist market.
type OrderBookProvider struct {
	bbo       BBOFetcher
	watchlist WatchlistGetter
	roomID    uuid.UUID
}

func NewOrderBookProvider(bbo BBOFetcher, watchlist WatchlistGetter, roomID uuid.UUID) *OrderBookProvider {
	return &OrderBookProvider{bbo: bbo, watchlist: watchlist, roomID: roomID}
}

func (p *OrderBookProvider) Name() string { return "order_book" }

func (p *OrderBookProvider) Provide(ctx context.Context) (promptbuilder.Section, error) {
	markets, err := p.watchlist.Get(ctx, p.roomID)
	if err != nil {
		return promptbuilder.Section{}, errors.Wrap(err, "read watchlist")
	}
	if len(markets) == 0 {
		return promptbuilder.Section{}, errors.New("watchlist is empty")
	}

	var sb strings.Builder
	sb.WriteString("```\n")
	sb.WriteString("Market         | Bid        | Ask        | Spread   | Spread %\n")
	sb.WriteString("---------------|------------|------------|----------|--------\n")

	var rows int
	for _, market := range markets {
		bbo, err := p.bbo.BBO(ctx, market)
		if err != nil {
			continue
		}

		sb.WriteString(fmt.Sprintf("%-14s | %10s | %10s | %8s | %6s%%\n",
			market,
			bbo.Bid.StringFixed(4),
			bbo.Ask.StringFixed(4),
			bbo.Spread().StringFixed(4),
			bbo.SpreadPercent().StringFixed(3),
		))
		rows++
	}
	sb.WriteString("```\n")

	if rows == 0 {
		return promptbuilder.Section{}, errors.New("no order book data available")
	}

	return promptbuilder.Section{Title: "Order Book", Body: sb.String()}, nil
}

// WatchlistProvider renders the raw watchlist so the model knows which
// markets the agent is tracking.
type WatchlistProvider struct {
	watchlist WatchlistGetter
	roomID    uuid.UUID
}

func NewWatchlistProvider(watchlist WatchlistGetter, roomID uuid.UUID) *WatchlistProvider {
	return &WatchlistProvider{watchlist: watchlist, roomID: roomID}
}

func (p *WatchlistProvider) Name() string { return "watchlist" }

func (p *WatchlistProvider) Provide(ctx context.Context) (promptbuilder.Section, error) {
	markets, err := p.watchlist.Get(ctx, p.roomID)
	if err != nil {
		return promptbuilder.Section{}, errors.Wrap(err, "read watchlist")
	}
	if len(markets) == 0 {
		return promptbuilder.Section{}, errors.New("watchlist is empty")
	}

	return promptbuilder.Section{
		Title: "Watchlist",
		Body:  "Tracked markets: " + strings.Join(markets, ", ") + "\n",
	}, nil
}
