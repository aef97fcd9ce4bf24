package database

import (
	"database/sql"
)

type Photo struct {
	Id                int64          `db:"id,omitempty"`
	Path              string         `db:"img_path"`
	Width             int            `db:"img_width"`
	Height            int            `db:"img_height"`
	DateAdded         string         `db:"date_added"`
	DateLastDisplayed sql.NullString `db:"date_last_displayed"`
	TimesDisplayed    sql.NullInt64  `db:"times_displayed"`
	Disabled          sql.NullString `db:"disabled"`
	Title             sql.NullString `db:"title"`
	Subtitle          sql.NullString `db:"subtitle"`
	Score             sql.NullInt64  `db:"score"`
}

type Category struct {
	Id  int64  `db:"id,omitempty"`
	Tag string `db:"tag"`
}

type CategoryPhoto struct {
	CategoryId int64 `db:"category_id"`
	PhotoId    int64 `db:"photo_id"`
}
