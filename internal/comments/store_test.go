package comments

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchdash/pkg/contracts/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "comments.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndListRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, domain.Comment{
		SubjectID:   "PO-1",
		SubjectType: domain.SubjectPurchaseOrder,
		Text:        "Delivery confirmed by supplier",
		Author:      "n.karim",
	})
	require.NoError(t, err)

	_, err = s.Add(ctx, domain.Comment{
		SubjectID:   "PO-1",
		SubjectType: domain.SubjectPurchaseOrder,
		Text:        "Invoice received",
		Author:      "a.benali",
	})
	require.NoError(t, err)

	got, err := s.List(ctx, "PO-1", domain.SubjectPurchaseOrder)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Delivery confirmed by supplier", got[0].Text)
	assert.Equal(t, "Invoice received", got[1].Text)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestListScopedBySubject(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, domain.Comment{
		SubjectID: "PO-1", SubjectType: domain.SubjectPurchaseOrder,
		Text: "on order", Author: "u",
	})
	require.NoError(t, err)
	_, err = s.Add(ctx, domain.Comment{
		SubjectID: "PO-1", SubjectType: domain.SubjectContract,
		Text: "on contract with same id", Author: "u",
	})
	require.NoError(t, err)

	onOrder, err := s.List(ctx, "PO-1", domain.SubjectPurchaseOrder)
	require.NoError(t, err)
	require.Len(t, onOrder, 1)
	assert.Equal(t, "on order", onOrder[0].Text)

	onContract, err := s.List(ctx, "PO-1", domain.SubjectContract)
	require.NoError(t, err)
	require.Len(t, onContract, 1)
	assert.Equal(t, domain.SubjectContract, onContract[0].SubjectType)
}

func TestAddRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cases := []domain.Comment{
		{SubjectType: domain.SubjectPurchaseOrder, Text: "x", Author: "u"},
		{SubjectID: "PO-1", SubjectType: domain.SubjectPurchaseOrder, Author: "u"},
		{SubjectID: "PO-1", SubjectType: domain.SubjectPurchaseOrder, Text: "x"},
		{SubjectID: "PO-1", SubjectType: "Invoice", Text: "x", Author: "u"},
	}
	for _, c := range cases {
		_, err := s.Add(ctx, c)
		assert.Error(t, err)
	}

	got, err := s.List(ctx, "PO-1", domain.SubjectPurchaseOrder)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListUnknownSubjectEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.List(context.Background(), "missing", domain.SubjectContract)
	require.NoError(t, err)
	assert.Empty(t, got)
}
