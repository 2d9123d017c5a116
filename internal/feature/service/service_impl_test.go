package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/paperforge/paperforge/internal/feature/domain"
	"github.com/paperforge/paperforge/internal/feature/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Feature{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateNormalizesKey(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Create(context.Background(), domain.CreateRequest{
		Key:  "  PDFExport  ",
		Name: "PDF Export",
	})
	require.NoError(t, err)
	assert.Equal(t, "pdfexport", resp.Key)
	assert.True(t, resp.Active)
}

func TestCreateDuplicateKeyCaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Key:  "PDFExport",
		Name: "PDF Export",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateRequest{
		Key:  "pdfexport",
		Name: "PDF Export Again",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{Key: "   ", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Key: "x", Name: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestDeleteIsHard(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		Key:  "search",
		Name: "Search",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	// The key is free for reuse after a hard delete.
	_, err = svc.Create(context.Background(), domain.CreateRequest{
		Key:  "search",
		Name: "Search v2",
	})
	require.NoError(t, err)
}

func TestDeleteMissing(t *testing.T) {
	svc := newTestService(t)

	err := svc.Delete(context.Background(), "123456789")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestArchiveKeepsRow(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		Key:  "search",
		Name: "Search",
	})
	require.NoError(t, err)

	archived, err := svc.Archive(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, archived.Active)

	// Archived keys stay claimed.
	_, err = svc.Create(context.Background(), domain.CreateRequest{
		Key:  "search",
		Name: "Search v2",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
}

func TestEntitledNamesUnknownKeyFallsBack(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Key:  "search",
		Name: "Search",
	})
	require.NoError(t, err)

	names, err := svc.EntitledNames(context.Background(), map[string]bool{
		"search":   true,
		"ghostkey": true,
		"disabled": false,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"search":   "Search",
		"ghostkey": "ghostkey",
	}, names)
}

func TestEntitledNamesDropsArchived(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		Key:  "search",
		Name: "Search",
	})
	require.NoError(t, err)

	_, err = svc.Archive(context.Background(), created.ID)
	require.NoError(t, err)

	names, err := svc.EntitledNames(context.Background(), map[string]bool{"search": true})
	require.NoError(t, err)
	assert.Empty(t, names)
}
