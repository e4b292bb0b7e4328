package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"guacamaya/internal/domain/entity"
	pg "guacamaya/internal/infra/adapter/persistence/postgres"
)

func TestArticleWriter_Upsert(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	row := sampleRow()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (slug) DO UPDATE")).
		WithArgs("crisis-hidrica-los-salias",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), `["Servicios","Agua"]`, entity.StatusPublished).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(row.ID))

	w := pg.NewArticleWriter(db)
	id, err := w.Upsert(context.Background(), "crisis-hidrica-los-salias", row)
	if err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
	if id != row.ID {
		t.Fatalf("id=%q, want %q", id, row.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleWriter_Upsert_DefaultsDraftAndEmptyTags(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("INSERT INTO articles").
		WithArgs("s", nil, nil, nil, nil, nil, nil, `[]`, "draft").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("new-id"))

	w := pg.NewArticleWriter(db)
	if _, err := w.Upsert(context.Background(), "s", entity.RemoteRow{}); err != nil {
		t.Fatalf("Upsert err=%v", err)
	}
}

func TestArticleWriter_SetStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET status")).
		WithArgs("draft", "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET status")).
		WithArgs("draft", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := pg.NewArticleWriter(db)
	if err := w.SetStatus(context.Background(), "a1", "draft"); err != nil {
		t.Fatalf("SetStatus err=%v", err)
	}
	if err := w.SetStatus(context.Background(), "missing", "draft"); !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestArticleWriter_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles")).
		WithArgs("a2").
		WillReturnError(errors.New("db down"))

	w := pg.NewArticleWriter(db)
	if err := w.Delete(context.Background(), "a1"); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := w.Delete(context.Background(), "a2"); err == nil {
		t.Fatal("want error")
	}
}
