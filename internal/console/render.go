package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trip_hotel/internal/domain"
	"trip_hotel/internal/search"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	starStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	priceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("202"))
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("32"))
	favStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// FavoriteSet reports whether a hotel is a favorite.
type FavoriteSet interface {
	Contains(id int64) bool
}

// View is everything one redraw of the list needs.
type View struct {
	Filter    search.Filter
	Items     []domain.HotelSummary
	State     search.State
	HasMore   bool
	Err       error
	Favorites FavoriteSet
	Lang      string
}

// Render draws the filter header, one card per hotel and the list footer.
func Render(v View) string {
	var out strings.Builder
	out.WriteString(headerStyle.Render(filterSummary(v.Filter)))
	out.WriteString("\n")

	if v.State == search.FetchingFirstPage {
		out.WriteString(metaStyle.Render("loading..."))
		out.WriteString("\n")
		return out.String()
	}

	for i, h := range v.Items {
		fav := v.Favorites != nil && v.Favorites.Contains(h.ID)
		out.WriteString(renderCard(i+1, h, fav, v.Lang))
		out.WriteString("\n")
	}

	out.WriteString(footer(v))
	out.WriteString("\n")
	return out.String()
}

func filterSummary(f search.Filter) string {
	city := f.Destination
	if city == "" {
		city = "any city"
	}
	parts := []string{
		city,
		fmt.Sprintf("%s → %s (%d nights)", f.CheckIn.Format(dateLayout), f.CheckOut.Format(dateLayout), f.Nights()),
		fmt.Sprintf("%d room(s), %d adult(s)", f.RoomCount, f.AdultCount),
	}
	if f.Keyword != "" {
		parts = append(parts, "“"+f.Keyword+"”")
	}
	if f.StarRating != nil {
		parts = append(parts, fmt.Sprintf("%d★", *f.StarRating))
	}
	if p := priceRange(f.PriceMin, f.PriceMax); p != "" {
		parts = append(parts, p)
	}
	if f.Tag != "" {
		parts = append(parts, "#"+f.Tag)
	}
	return strings.Join(parts, " · ")
}

func priceRange(lo, hi *float64) string {
	switch {
	case lo == nil && hi == nil:
		return ""
	case lo == nil:
		return "≤ " + yuan(*hi)
	case hi == nil:
		return "≥ " + yuan(*lo)
	}
	return yuan(*lo) + "-" + yuan(*hi)
}

func yuan(v float64) string { return "¥" + strconv.FormatFloat(v, 'f', -1, 64) }

func renderCard(n int, h domain.HotelSummary, fav bool, lang string) string {
	var b strings.Builder
	title := fmt.Sprintf("%d. %s", n, h.DisplayName(lang))
	b.WriteString(nameStyle.Render(title))
	if h.Star > 0 {
		b.WriteString(" " + starStyle.Render(strings.Repeat("★", h.Star)))
	}
	if fav {
		b.WriteString(" " + favStyle.Render("♥"))
	}

	loc := h.City
	if h.Address != nil && *h.Address != "" {
		loc += " · " + *h.Address
	}
	b.WriteString("\n" + metaStyle.Render(fmt.Sprintf("#%d %s", h.ID, loc)))

	if len(h.Tags) > 0 {
		b.WriteString("\n" + tagStyle.Render(strings.Join(h.Tags, " | ")))
	}
	if h.LowestPrice != nil {
		b.WriteString("\n" + priceStyle.Render(yuan(*h.LowestPrice)+" 起"))
	}
	return cardStyle.Render(b.String())
}

// footer mirrors the list's tail row: loading, retry hint, or end of list.
func footer(v View) string {
	switch {
	case v.State == search.FetchingNextPage:
		return metaStyle.Render("loading more...")
	case v.Err != nil:
		return errorStyle.Render("failed to load: " + v.Err.Error() + " (reload to retry)")
	case len(v.Items) == 0 && v.State == search.Ready:
		return metaStyle.Render("no hotels match these filters")
	case v.HasMore:
		return metaStyle.Render(fmt.Sprintf("%d shown, type more for the next page", len(v.Items)))
	case v.State == search.Idle:
		return ""
	}
	return metaStyle.Render(fmt.Sprintf("%d shown, no more results", len(v.Items)))
}

func renderHistory(items []string) string {
	if len(items) == 0 {
		return metaStyle.Render("no search history") + "\n"
	}
	var b strings.Builder
	for i, kw := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, kw)
	}
	return b.String()
}

func renderDetail(h domain.HotelView, fav bool, lang string) string {
	name := h.NameCN
	if lang == "en" && h.NameEN != nil && *h.NameEN != "" {
		name = *h.NameEN
	}
	var b strings.Builder
	b.WriteString(nameStyle.Render(name))
	if h.Star > 0 {
		b.WriteString(" " + starStyle.Render(strings.Repeat("★", h.Star)))
	}
	if fav {
		b.WriteString(" " + favStyle.Render("♥ favorite"))
	}

	loc := h.City
	if h.Address != nil && *h.Address != "" {
		loc += " · " + *h.Address
	}
	b.WriteString("\n" + metaStyle.Render(fmt.Sprintf("#%d %s", h.ID, loc)))
	if len(h.Tags) > 0 {
		b.WriteString("\n" + tagStyle.Render(strings.Join(h.Tags, " | ")))
	}
	if h.LowestPrice != nil {
		b.WriteString("\n" + priceStyle.Render(yuan(*h.LowestPrice)+" 起"))
	}
	if h.Description != nil && *h.Description != "" {
		b.WriteString("\n\n" + *h.Description)
	}
	if len(h.Images) > 0 {
		b.WriteString("\n")
		for _, img := range h.Images {
			b.WriteString("\n" + metaStyle.Render("🖼 "+img))
		}
	}
	return cardStyle.Render(b.String()) + "\n"
}
