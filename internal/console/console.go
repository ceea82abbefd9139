// Package console is a line-oriented front end for the hotel list. Each input
// line is one command; after a command the list is redrawn once the fetch it
// triggered has settled.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trip_hotel/internal/domain"
	"trip_hotel/internal/search"
	"trip_hotel/internal/session"
)

const dateLayout = "2006-01-02"

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// ErrUsage wraps malformed command input.
var ErrUsage = errors.New("usage")

// HotelSource loads the full record behind a list card.
type HotelSource interface {
	Hotel(ctx context.Context, id int64) (domain.HotelView, error)
}

type Console struct {
	ctl     *search.Controller
	details HotelSource
	history *session.History
	favs    *session.Favorites
	out     io.Writer
	lang    string
	log     zerolog.Logger
}

type Option func(*Console)

func WithLogger(l zerolog.Logger) Option { return func(c *Console) { c.log = l } }

// WithDetails enables the detail command.
func WithDetails(src HotelSource) Option { return func(c *Console) { c.details = src } }

// WithLanguage selects hotel names: "en" prefers english names.
func WithLanguage(lang string) Option { return func(c *Console) { c.lang = lang } }

func New(ctl *search.Controller, h *session.History, f *session.Favorites, out io.Writer, opts ...Option) *Console {
	c := &Console{ctl: ctl, history: h, favs: f, out: out, lang: "zh", log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	if c.history == nil {
		c.history = session.NewHistory(nil)
	}
	if c.favs == nil {
		c.favs = session.NewFavorites(nil)
	}
	return c
}

// Run reads commands from in until EOF, quit or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.ctl.NotifyFilterChanged()
	c.settleAndShow()

	sc := bufio.NewScanner(in)
	c.prompt()
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := c.Exec(ctx, sc.Text())
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case err != nil:
			fmt.Fprintln(c.out, errorStyle.Render(err.Error()))
		}
		c.prompt()
	}
	return sc.Err()
}

func (c *Console) prompt() { fmt.Fprint(c.out, promptStyle.Render("hotels> ")) }

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "quit", "exit", "q":
		return ErrQuit
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
		return nil
	case "show", "ls":
		c.show()
		return nil
	case "more", "m":
		c.ctl.NotifyScrollNearEnd()
		c.settleAndShow()
		return nil
	case "reload", "r":
		c.ctl.Reload()
		c.settleAndShow()
		return nil
	case "fav":
		return c.toggleFavorite(ctx, args)
	case "detail", "d":
		return c.showDetail(ctx, args)
	case "history", "h":
		return c.historyCmd(ctx, args)
	case "keyword", "kw", "k":
		if rest != "" {
			if err := c.history.Add(ctx, rest); err != nil {
				c.log.Warn().Err(err).Msg("history not saved")
			}
		}
		return c.apply(func(f *search.FilterState) { f.SetKeyword(rest) })
	case "city":
		return c.apply(func(f *search.FilterState) { f.SetDestination(rest) })
	case "tag":
		if rest == "-" {
			rest = ""
		}
		return c.apply(func(f *search.FilterState) { f.SetTag(rest) })
	case "clear":
		return c.apply(func(f *search.FilterState) { f.Reset() })
	}

	fn, err := parseFilterCmd(cmd, args)
	if err != nil {
		return err
	}
	return c.apply(fn)
}

// parseFilterCmd handles the commands whose arguments need parsing.
func parseFilterCmd(cmd string, args []string) (func(*search.FilterState), error) {
	switch cmd {
	case "dates":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: dates YYYY-MM-DD YYYY-MM-DD", ErrUsage)
		}
		in, err1 := time.Parse(dateLayout, args[0])
		out, err2 := time.Parse(dateLayout, args[1])
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("%w: dates: %v", ErrUsage, err)
		}
		return func(f *search.FilterState) { f.SetDateRange(in, out) }, nil

	case "rooms", "adults":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s N", ErrUsage, cmd)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s N", ErrUsage, cmd)
		}
		if cmd == "rooms" {
			return func(f *search.FilterState) { f.SetRoomCount(n) }, nil
		}
		return func(f *search.FilterState) { f.SetAdultCount(n) }, nil

	case "star":
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: star 3|4|5|any", ErrUsage)
		}
		if args[0] == "any" || args[0] == "-" {
			return func(f *search.FilterState) { f.SetStarRating(nil) }, nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("%w: star 3|4|5|any", ErrUsage)
		}
		return func(f *search.FilterState) { f.SetStarRating(&n) }, nil

	case "price":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: price MIN|- MAX|-", ErrUsage)
		}
		lo, err1 := parseBound(args[0])
		hi, err2 := parseBound(args[1])
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("%w: price: %v", ErrUsage, err)
		}
		return func(f *search.FilterState) { f.SetPriceRange(lo, hi) }, nil

	case "band":
		label := strings.Join(args, " ")
		b, ok := search.BandByLabel(label)
		if !ok {
			return nil, fmt.Errorf("%w: band %s", ErrUsage, bandLabels())
		}
		return func(f *search.FilterState) { f.SetPriceBand(b) }, nil
	}
	return nil, fmt.Errorf("unknown command %q (try help)", cmd)
}

func parseBound(s string) (*float64, error) {
	if s == "-" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func bandLabels() string {
	labels := make([]string, 0, len(search.PriceBands))
	for _, b := range search.PriceBands {
		labels = append(labels, b.Label)
	}
	return strings.Join(labels, "|")
}

func (c *Console) apply(fn func(*search.FilterState)) error {
	if !c.ctl.Apply(fn) {
		fmt.Fprintln(c.out, metaStyle.Render("filters unchanged"))
		return nil
	}
	c.settleAndShow()
	return nil
}

func (c *Console) toggleFavorite(ctx context.Context, args []string) error {
	if len(args) == 0 {
		ids := c.favs.List()
		if len(ids) == 0 {
			fmt.Fprintln(c.out, metaStyle.Render("no favorites yet"))
			return nil
		}
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatInt(id, 10)
		}
		fmt.Fprintln(c.out, "favorites: "+strings.Join(parts, ", "))
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: fav HOTEL_ID", ErrUsage)
	}
	on, err := c.favs.Toggle(ctx, id)
	if err != nil {
		return err
	}
	if on {
		fmt.Fprintf(c.out, "hotel %d added to favorites\n", id)
	} else {
		fmt.Fprintf(c.out, "hotel %d removed from favorites\n", id)
	}
	return nil
}

// showDetail fetches list item N (1-based) and renders the full record.
func (c *Console) showDetail(ctx context.Context, args []string) error {
	if c.details == nil {
		return errors.New("detail view is not available")
	}
	items := c.ctl.CurrentItems()
	n := 0
	if len(args) == 1 {
		n, _ = strconv.Atoi(args[0])
	}
	if n < 1 || n > len(items) {
		return fmt.Errorf("%w: detail N (1-%d)", ErrUsage, len(items))
	}
	hv, err := c.details.Hotel(ctx, items[n-1].ID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("hotel %d is no longer listed", items[n-1].ID)
	}
	if err != nil {
		return fmt.Errorf("load hotel %d: %w", items[n-1].ID, err)
	}
	fmt.Fprint(c.out, renderDetail(hv, c.favs.Contains(hv.ID), c.lang))
	return nil
}

// historyCmd lists history, clears it, or re-runs entry N (1-based).
func (c *Console) historyCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, renderHistory(c.history.List()))
		return nil
	}
	if args[0] == "clear" {
		return c.history.Clear(ctx)
	}
	n, err := strconv.Atoi(args[0])
	items := c.history.List()
	if err != nil || n < 1 || n > len(items) {
		return fmt.Errorf("%w: history [clear|N]", ErrUsage)
	}
	return c.Exec(ctx, "keyword "+items[n-1])
}

func (c *Console) settleAndShow() {
	c.ctl.Wait()
	c.show()
}

func (c *Console) show() {
	fmt.Fprint(c.out, Render(View{
		Filter:    c.ctl.Filters(),
		Items:     c.ctl.CurrentItems(),
		State:     c.ctl.State(),
		HasMore:   c.ctl.HasMore(),
		Err:       c.ctl.LastError(),
		Favorites: c.favs,
		Lang:      c.lang,
	}))
}

const helpText = `commands:
  city NAME            destination city (empty clears)
  keyword TEXT         hotel name / address keyword (k)
  dates IN OUT         check-in and check-out, YYYY-MM-DD
  rooms N | adults N   occupancy
  star 3|4|5|any       star rating
  price MIN|- MAX|-    nightly price range
  band LABEL           preset price range
  tag TEXT|-           facility tag
  clear                reset star, price and tag
  more | reload | show
  detail N             full record of list item N
  fav [ID]             list or toggle favorites
  history [clear|N]    keyword history, N re-runs an entry
  quit`
