package repository

import "novelhub/moderation-service/pkg/db"

// ExpectedSchemas lists the tables and columns the repositories query
func ExpectedSchemas() []db.TableSchema {
	person := func(name, created string) db.TableSchema {
		return db.TableSchema{
			Name: name,
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "name", DataType: "varchar"},
				{Name: "pen_name", DataType: "varchar"},
				{Name: "description", DataType: "text"},
				{Name: "birthday", DataType: "date"},
				{Name: "deathday", DataType: "date"},
				{Name: "gender", DataType: "varchar"},
				{Name: "country", DataType: "varchar"},
				{Name: "image_url", DataType: "text"},
				{Name: "created_by", DataType: "bigint"},
				{Name: "approval_status", DataType: "varchar"},
				{Name: "rejected_reason", DataType: "text"},
				{Name: "approved_by", DataType: "bigint"},
				{Name: created, DataType: "bigint"},
				{Name: "created_at", DataType: "datetime"},
				{Name: "updated_at", DataType: "datetime"},
			},
		}
	}
	entity := func(name string) db.TableSchema {
		return db.TableSchema{
			Name: name,
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "name", DataType: "varchar"},
				{Name: "pen_name", DataType: "varchar"},
				{Name: "birthday", DataType: "date"},
				{Name: "deathday", DataType: "date"},
				{Name: "created_at", DataType: "datetime"},
			},
		}
	}

	return []db.TableSchema{
		{
			Name: "users",
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "username", DataType: "varchar"},
				{Name: "email", DataType: "varchar"},
			},
		},
		{
			Name: "requests",
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "user_id", DataType: "bigint"},
				{Name: "title", DataType: "varchar"},
				{Name: "content", DataType: "text"},
				{Name: "status", DataType: "varchar"},
				{Name: "admin_note", DataType: "text"},
				{Name: "processed_by", DataType: "bigint"},
				{Name: "processed_at", DataType: "datetime"},
				{Name: "created_at", DataType: "datetime"},
				{Name: "updated_at", DataType: "datetime"},
			},
		},
		person("author_requests", "created_author_id"),
		person("artist_requests", "created_artist_id"),
		entity("authors"),
		entity("artists"),
		{
			Name: "novels",
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "slug", DataType: "varchar"},
				{Name: "author_id", DataType: "bigint"},
				{Name: "artist_id", DataType: "bigint"},
				{Name: "pending_author_request_id", DataType: "bigint"},
				{Name: "pending_artist_request_id", DataType: "bigint"},
				{Name: "updated_at", DataType: "datetime"},
			},
		},
		{
			Name: "comments",
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "user_id", DataType: "bigint"},
				{Name: "novel_id", DataType: "bigint"},
				{Name: "content", DataType: "text"},
				{Name: "parent_comment_id", DataType: "bigint"},
				{Name: "is_active", DataType: "tinyint"},
			},
		},
		{
			Name: "notifications",
			Columns: []db.ColumnType{
				{Name: "id", DataType: "char"},
				{Name: "user_id", DataType: "bigint"},
				{Name: "type", DataType: "varchar"},
				{Name: "content_type", DataType: "varchar"},
				{Name: "object_id", DataType: "bigint"},
			},
		},
	}
}
