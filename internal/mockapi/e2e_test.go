package mockapi_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-kr/cms-nano/internal/mockapi"
	"github.com/m-kr/cms-nano/pkg/client"
	"github.com/m-kr/cms-nano/pkg/listing"
	"github.com/m-kr/cms-nano/pkg/model"
	"github.com/m-kr/cms-nano/pkg/remotesync"
	"github.com/m-kr/cms-nano/pkg/schema"
)

func TestAuthoringRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv, err := mockapi.NewServer(ctx)
	require.NoError(t, err)
	httpServer := httptest.NewServer(srv)
	t.Cleanup(httpServer.Close)

	api, err := client.New(httpServer.URL+"/api", client.WithTimeout(5*time.Second))
	require.NoError(t, err)

	var notices []remotesync.Notice
	confirmed := 0
	session := remotesync.New(api,
		remotesync.WithRegistry(schema.Default()),
		remotesync.WithNotifier(remotesync.NotifierFunc(func(n remotesync.Notice) { notices = append(notices, n) })),
		remotesync.WithConfirmer(listing.ConfirmFunc(func(ctx context.Context, message string) (bool, error) {
			confirmed++
			return true, nil
		})),
		remotesync.WithListingOptions(listing.WithItemsPerPage(2), listing.WithSort("name")),
	)

	started := session.StartNew(ctx)
	require.True(t, started.OK(), started.Message)
	require.Len(t, session.FieldTypes(), len(mockapi.SeedFieldTypes()))

	state := session.Editor()
	state.SetMainField(model.AttrName, "Testimonial")
	state.SetMainField(model.AttrLabel, "Customer testimonial")
	state.AppendField()
	require.NoError(t, state.SetFieldValue(0, model.AttrName, "quote"))
	require.NoError(t, state.SetFieldValue(0, model.AttrFieldTypeID, mockapi.FieldTypeID("textarea")))
	state.AppendFieldset()
	require.NoError(t, state.SetFieldsetValue(0, model.AttrName, "author"))
	require.NoError(t, state.SetFieldsetFieldValue(0, 0, model.AttrName, "fullName"))
	require.NoError(t, state.SetFieldsetFieldValue(0, 0, model.AttrFieldTypeID, mockapi.FieldTypeID("text")))

	created := session.SubmitNew(ctx)
	require.True(t, created.OK(), created.Message)
	id := created.Value
	assert.Equal(t, id, session.NewComponentID())
	assert.Equal(t, remotesync.AddedMessage("Testimonial"), created.Message)

	opened := session.Open(ctx, id)
	require.True(t, opened.OK(), opened.Message)
	require.Len(t, opened.Value.Fieldset, 1)
	assert.Equal(t, "fullName", opened.Value.Fieldset[0].Fields[0].Name)

	require.NoError(t, session.Editor().SetFieldValue(0, model.AttrRequired, true))
	saved := session.Save(ctx)
	require.True(t, saved.OK(), saved.Message)
	assert.True(t, saved.Value.Fields[0].Required)
	assert.Equal(t, remotesync.MessageSaved, saved.Message)

	listed := session.LoadListing(ctx, 1)
	require.True(t, listed.OK(), listed.Message)
	assert.Equal(t, 2, listed.Value.TotalPages)
	assert.Len(t, listed.Value.Items, 2)

	found := session.Search(ctx, "testi")
	require.True(t, found.OK(), found.Message)
	require.Len(t, found.Value.Items, 1)
	assert.Equal(t, id, found.Value.Items[0].ID)

	removed := session.Remove(ctx, id)
	require.True(t, removed.OK(), removed.Message)
	assert.True(t, removed.Value)
	assert.Equal(t, 1, confirmed)
	assert.Empty(t, session.Cursor().Snapshot().Items)

	_, err = srv.Store().Get(id)
	assert.Error(t, err)

	missing := session.Open(ctx, id)
	assert.False(t, missing.OK())
	assert.Contains(t, missing.Message, "does not exist")
	require.NotEmpty(t, notices)
	assert.Equal(t, remotesync.KindError, notices[len(notices)-1].Kind)
}

func TestSubmitRejectedByServer(t *testing.T) {
	ctx := context.Background()
	srv, err := mockapi.NewServer(ctx)
	require.NoError(t, err)
	httpServer := httptest.NewServer(srv)
	t.Cleanup(httpServer.Close)

	api, err := client.New(httpServer.URL + "/api")
	require.NoError(t, err)

	// No local registry, so the server is the one rejecting the payload.
	session := remotesync.New(api)
	session.Editor().SetMainField(model.AttrName, "HeroBanner")

	result := session.SubmitNew(ctx)
	require.False(t, result.OK())
	assert.Contains(t, result.Message, "already taken")
	assert.Empty(t, session.NewComponentID())
}
