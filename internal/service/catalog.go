package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/shopspring/decimal"
)

type SortKey string

const (
	SortTitleAsc        SortKey = "title_asc"
	SortTitleDesc       SortKey = "title_desc"
	SortPriceAsc        SortKey = "price_asc"
	SortPriceDesc       SortKey = "price_desc"
	SortRatingDesc      SortKey = "rating_desc"
	SortReleaseDateDesc SortKey = "release_date_desc"
	SortFeaturedFirst   SortKey = "featured_first"
)

func (k SortKey) Valid() bool {
	switch k {
	case "", SortTitleAsc, SortTitleDesc, SortPriceAsc, SortPriceDesc,
		SortRatingDesc, SortReleaseDateDesc, SortFeaturedFirst:
		return true
	}
	return false
}

// FilterOptions zero values disable the corresponding predicate.
type FilterOptions struct {
	Query        string
	Category     string
	OnlyFree     bool
	OnlyFeatured bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Sort         SortKey
}

// FilterGames returns a new slice holding the games that match every set
// predicate, ordered by opts.Sort. games is not modified.
func FilterGames(games []*domain.Game, opts FilterOptions) []*domain.Game {
	query := strings.ToLower(strings.TrimSpace(opts.Query))

	out := make([]*domain.Game, 0, len(games))
	for _, g := range games {
		if matches(g, query, opts) {
			out = append(out, g)
		}
	}

	if opts.Sort != "" {
		less := lessFor(opts.Sort)
		sort.SliceStable(out, func(i, j int) bool {
			if c := less(out[i], out[j]); c != 0 {
				return c < 0
			}
			return tieBreak(out[i], out[j]) < 0
		})
	}
	return out
}

func matches(g *domain.Game, query string, opts FilterOptions) bool {
	if query != "" &&
		!strings.Contains(strings.ToLower(g.Title), query) &&
		!strings.Contains(strings.ToLower(g.Description), query) &&
		!strings.Contains(strings.ToLower(g.Developer), query) &&
		!strings.Contains(strings.ToLower(g.Category), query) {
		return false
	}
	if opts.Category != "" && !strings.EqualFold(g.Category, opts.Category) {
		return false
	}
	if opts.OnlyFree && !g.IsFree {
		return false
	}
	if opts.OnlyFeatured && !g.IsFeatured {
		return false
	}
	if opts.MinPrice != nil && g.Price.LessThan(*opts.MinPrice) {
		return false
	}
	if opts.MaxPrice != nil && g.Price.GreaterThan(*opts.MaxPrice) {
		return false
	}
	return true
}

// lessFor returns a three-way comparison for key.
func lessFor(key SortKey) func(a, b *domain.Game) int {
	switch key {
	case SortTitleDesc:
		return func(a, b *domain.Game) int { return -compareTitle(a, b) }
	case SortPriceAsc:
		return func(a, b *domain.Game) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		return func(a, b *domain.Game) int { return b.Price.Cmp(a.Price) }
	case SortRatingDesc:
		return func(a, b *domain.Game) int { return compareFloat(b.Rating, a.Rating) }
	case SortReleaseDateDesc:
		return func(a, b *domain.Game) int { return b.ReleaseDate.Compare(a.ReleaseDate) }
	case SortFeaturedFirst:
		return func(a, b *domain.Game) int { return compareBool(b.IsFeatured, a.IsFeatured) }
	default:
		return compareTitle
	}
}

func tieBreak(a, b *domain.Game) int {
	if c := compareTitle(a, b); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func compareTitle(a, b *domain.Game) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

type CatalogService struct {
	games repository.GameRepository
}

func NewCatalogService(games repository.GameRepository) *CatalogService {
	return &CatalogService{games: games}
}

func (s *CatalogService) ListGames(ctx context.Context, opts FilterOptions) ([]*domain.Game, error) {
	if !opts.Sort.Valid() {
		return nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalidInput, opts.Sort)
	}
	if opts.MinPrice != nil && opts.MaxPrice != nil && opts.MinPrice.GreaterThan(*opts.MaxPrice) {
		return nil, fmt.Errorf("%w: min_price is greater than max_price", ErrInvalidInput)
	}

	games, err := s.games.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list games: %v", ErrRemote, err)
	}
	return FilterGames(games, opts), nil
}

func (s *CatalogService) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	game, err := s.games.GetGame(ctx, id)
	if errors.Is(err, repository.ErrGameNotFound) {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get game: %v", ErrRemote, err)
	}
	return game, nil
}

func (s *CatalogService) UpsertGame(ctx context.Context, game *domain.Game) error {
	if game.ID == "" || strings.TrimSpace(game.Title) == "" {
		return fmt.Errorf("%w: game id and title are required", ErrInvalidInput)
	}
	if game.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if game.IsFree {
		game.Price = decimal.Zero
	}
	if err := s.games.UpsertGame(ctx, game); err != nil {
		return fmt.Errorf("%w: upsert game: %v", ErrRemote, err)
	}
	return nil
}

// ActiveTitles lists the titles the store currently sells, alphabetically.
func (s *CatalogService) ActiveTitles(ctx context.Context) ([]string, error) {
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list games: %v", ErrRemote, err)
	}
	titles := make([]string, 0, len(games))
	for _, g := range FilterGames(games, FilterOptions{Sort: SortTitleAsc}) {
		if g.IsActive {
			titles = append(titles, g.Title)
		}
	}
	return titles, nil
}
