package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"trip_hotel/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func jsonList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertHotel(ctx context.Context, h domain.Hotel) error {
	status := h.Status
	if status == "" {
		status = "pending"
	}
	_, err := r.db.ExecContext(ctx, upsertHotelSQL,
		h.ID,
		valInt64(h.MerchantID),
		h.NameCN,
		valStr(h.NameEN),
		h.City,
		valStr(h.Address),
		h.Stars,
		jsonList(h.Tags),
		jsonList(h.Images),
		valStr(h.Description),
		valF64(h.LowestPrice),
		status,
		valJSON(h.RawJSON),
	)
	return err
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.HotelView, error) {
	row := r.db.QueryRowContext(ctx, getHotelSQL, id)

	var hv domain.HotelView
	var nameEN, address, desc sql.NullString
	var tagsJSON, imagesJSON []byte
	var price sql.NullFloat64
	if err := row.Scan(
		&hv.ID, &hv.NameCN, &nameEN, &hv.City, &address, &hv.Star,
		&tagsJSON, &imagesJSON, &desc, &price,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.HotelView{}, domain.ErrNotFound
		}
		return domain.HotelView{}, err
	}
	hv.NameEN = nullStr(nameEN)
	hv.Address = nullStr(address)
	hv.Description = nullStr(desc)
	if price.Valid {
		p := price.Float64
		hv.LowestPrice = &p
	}
	_ = json.Unmarshal(tagsJSON, &hv.Tags)
	_ = json.Unmarshal(imagesJSON, &hv.Images)
	return hv, nil
}

// SearchHotels returns one page of online hotels in id order.
func (r *Repo) SearchHotels(ctx context.Context, q domain.SearchQuery) (domain.SearchPage, error) {
	where, args := searchWhere(q)
	query := "SELECT " + summaryCols + " FROM hotels WHERE " + where + " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, q.PageSize, q.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.SearchPage{}, err
	}
	defer rows.Close()

	items, err := scanSummaries(rows)
	if err != nil {
		return domain.SearchPage{}, err
	}
	return domain.SearchPage{Items: items, Page: q.Page, PageSize: q.PageSize}, nil
}

func (r *Repo) ListBanners(ctx context.Context, limit int) ([]domain.HotelSummary, error) {
	rows, err := r.db.QueryContext(ctx, listBannersSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

func searchWhere(q domain.SearchQuery) (string, []any) {
	conds := []string{"status = 'online'"}
	var args []any
	if q.Destination != nil {
		conds = append(conds, "city = ?")
		args = append(args, *q.Destination)
	}
	if q.Keyword != nil {
		like := "%" + escapeLike(*q.Keyword) + "%"
		conds = append(conds, "(name_cn LIKE ? OR name_en LIKE ? OR address LIKE ?)")
		args = append(args, like, like, like)
	}
	if q.StarRating != nil {
		conds = append(conds, "star = ?")
		args = append(args, *q.StarRating)
	}
	if q.PriceMin != nil {
		conds = append(conds, "lowest_price >= ?")
		args = append(args, *q.PriceMin)
	}
	if q.PriceMax != nil {
		conds = append(conds, "lowest_price <= ?")
		args = append(args, *q.PriceMax)
	}
	if q.Tag != nil {
		conds = append(conds, "JSON_CONTAINS(tags, JSON_QUOTE(?))")
		args = append(args, *q.Tag)
	}
	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanSummaries(rows *sql.Rows) ([]domain.HotelSummary, error) {
	out := []domain.HotelSummary{}
	for rows.Next() {
		var hs domain.HotelSummary
		var nameEN, address sql.NullString
		var tagsJSON, imagesJSON []byte
		var price sql.NullFloat64
		if err := rows.Scan(&hs.ID, &hs.NameCN, &nameEN, &hs.City, &address, &hs.Star, &tagsJSON, &imagesJSON, &price); err != nil {
			return nil, err
		}
		hs.NameEN = nullStr(nameEN)
		hs.Address = nullStr(address)
		if price.Valid {
			p := price.Float64
			hs.LowestPrice = &p
		}
		if err := json.Unmarshal(tagsJSON, &hs.Tags); err != nil || hs.Tags == nil {
			hs.Tags = []string{}
		}
		var images []string
		_ = json.Unmarshal(imagesJSON, &images)
		if len(images) > 0 {
			hs.Thumbnail = &images[0]
		}
		out = append(out, hs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
