package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (id, merchant_id, name_cn, name_en, city, address, star, tags, images, description, lowest_price, status, raw)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  merchant_id  = VALUES(merchant_id),
  name_cn      = VALUES(name_cn),
  name_en      = VALUES(name_en),
  city         = VALUES(city),
  address      = VALUES(address),
  star         = VALUES(star),
  tags         = VALUES(tags),
  images       = VALUES(images),
  description  = VALUES(description),
  lowest_price = VALUES(lowest_price),
  status       = VALUES(status),
  raw          = VALUES(raw),
  updated_at   = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getHotelSQL = `
SELECT
  id, name_cn, name_en, city, address, star, tags, images, description, lowest_price
FROM hotels
WHERE id = ? AND status = 'online'
`

// summaryCols is shared by search and banners; scanSummary reads them in this order.
const summaryCols = `id, name_cn, name_en, city, address, star, tags, images, lowest_price`

const listBannersSQL = `
SELECT ` + summaryCols + `
FROM hotels
WHERE status = 'online'
ORDER BY star DESC, id
LIMIT ?
`
