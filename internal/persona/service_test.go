package persona

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ldbrian/toughlove-ai-sub000/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	c, err := catalog.Parse([]byte(`[
		{"id":"rose","name":"Red Rose","price":50,"rarity":"common",
		 "effect":{"target":"All","mood":3,"favorability":2}},
		{"id":"perfume","name":"Noir Perfume","price":800,"rarity":"rare",
		 "effect":{"target":"Rin","mood":10,"favorability":8,"buff_minutes":60}},
		{"id":"ring","name":"Eternity Ring","price":9000,"rarity":"legendary",
		 "effect":{"target":"All","mood":200,"favorability":150}},
		{"id":"bitter_tea","name":"Bitter Tea","price":30,"rarity":"common",
		 "effect":{"target":"All","mood":-80,"favorability":-0.5}}
	]`))
	require.NoError(t, err)
	return c
}

func setupPersonaService(t *testing.T) (*Service, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	svc := NewService(sqlxDB, testCatalog(t), NewRepository(sqlxDB))

	return svc, mock, func() { sqlxDB.Close() }
}

func stateRow(userID, persona string, mood int, fav float64, buffEnd interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "persona", "mood", "favorability", "buff_end_at", "created_at", "updated_at"}).
		AddRow(userID, persona, mood, fav, buffEnd, time.Now(), time.Now())
}

func TestUseItem_LandsOnExistingState(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_usages").
		WithArgs("u1", "rose", "Rin", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("u1", "Rin").
		WillReturnRows(stateRow("u1", "Rin", 70, 12.5, nil))
	mock.ExpectExec("INSERT INTO persona_states").
		WithArgs("u1", "Rin", 73, 14.5, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.UseItem(context.Background(), "u1", "rose", "Rin")
	require.NoError(t, err)
	require.True(t, result.Landed)
	require.Equal(t, 3, result.MoodBoost)
	require.Equal(t, 2.0, result.FavBoost)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseItem_FirstUseStartsFromDefaults(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_usages").
		WithArgs("u1", "rose", "Rin", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("u1", "Rin").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "persona", "mood", "favorability", "buff_end_at", "created_at", "updated_at"}))
	// Mood starts at 60, favorability at 0.
	mock.ExpectExec("INSERT INTO persona_states").
		WithArgs("u1", "Rin", 63, 2.0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.UseItem(context.Background(), "u1", "rose", "Rin")
	require.NoError(t, err)
	require.True(t, result.Landed)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseItem_WrongTargetStillConsumed(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	// The usage row is written and committed; no state is touched.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_usages").
		WithArgs("u1", "perfume", "Yuki", false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := svc.UseItem(context.Background(), "u1", "perfume", "Yuki")
	require.NoError(t, err)
	require.False(t, result.Landed)
	require.Zero(t, result.MoodBoost)
	require.Zero(t, result.FavBoost)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseItem_ClampsToUpperBound(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_usages").
		WithArgs("u1", "ring", "Rin", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("u1", "Rin").
		WillReturnRows(stateRow("u1", "Rin", 90, 80, nil))
	mock.ExpectExec("INSERT INTO persona_states").
		WithArgs("u1", "Rin", 100, 100.0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.UseItem(context.Background(), "u1", "ring", "Rin")
	require.NoError(t, err)
	require.Equal(t, 10, result.MoodBoost)
	require.Equal(t, 20.0, result.FavBoost)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseItem_ClampsToLowerBound(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_usages").
		WithArgs("u1", "bitter_tea", "Rin", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("u1", "Rin").
		WillReturnRows(stateRow("u1", "Rin", 20, 0.3, nil))
	mock.ExpectExec("INSERT INTO persona_states").
		WithArgs("u1", "Rin", 0, 0.0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.UseItem(context.Background(), "u1", "bitter_tea", "Rin")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseItem_BuffSetWhenItemCarriesOne(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_usages").
		WithArgs("u1", "perfume", "Rin", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("u1", "Rin").
		WillReturnRows(stateRow("u1", "Rin", 60, 0, nil))
	mock.ExpectExec("INSERT INTO persona_states").
		WithArgs("u1", "Rin", 70, 8.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := svc.UseItem(context.Background(), "u1", "perfume", "Rin")
	require.NoError(t, err)
	require.True(t, result.Landed)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseItem_BuffPreservedWhenItemHasNone(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	existing := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_usages").
		WithArgs("u1", "rose", "Rin", true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("u1", "Rin").
		WillReturnRows(stateRow("u1", "Rin", 60, 0, existing))
	// The rose has no buff; the perfume's earlier buff survives untouched.
	mock.ExpectExec("INSERT INTO persona_states").
		WithArgs("u1", "Rin", 63, 2.0, existing).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := svc.UseItem(context.Background(), "u1", "rose", "Rin")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseItem_UnknownItem(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	_, err := svc.UseItem(context.Background(), "u1", "ghost", "Rin")
	require.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUseItem_UsageInsertFailureRollsBack(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO item_usages").
		WithArgs("u1", "rose", "Rin", true).
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	_, err := svc.UseItem(context.Background(), "u1", "rose", "Rin")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetState_MissingRowDefaults(t *testing.T) {
	svc, mock, close := setupPersonaService(t)
	defer close()

	mock.ExpectQuery("FROM persona_states").
		WithArgs("u1", "Rin").
		WillReturnError(sql.ErrNoRows)

	state, err := svc.GetState(context.Background(), "u1", "Rin")
	require.NoError(t, err)
	require.Equal(t, 60, state.Mood)
	require.Equal(t, 0.0, state.Favorability)
	require.False(t, state.BuffEndAt.Valid)
}

func TestClampFavorability(t *testing.T) {
	require.Equal(t, 2.1, clampFavorability(2.06))
	require.Equal(t, 2.0, clampFavorability(2.04))
	require.Equal(t, 0.0, clampFavorability(-3))
	require.Equal(t, 100.0, clampFavorability(104.2))
	require.Equal(t, 50.0, clampFavorability(50))
}
