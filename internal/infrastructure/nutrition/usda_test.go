package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"produce-vision/internal/domain/entity"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUSDAClient_QueryParameters(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, `{"foods":[]}`)
	}))
	defer srv.Close()

	c := NewUSDAClient(srv.URL, "secret", srv.Client())
	_, _ = c.Lookup(context.Background(), "Eggplant")

	require.NotNil(t, got)
	require.Equal(t, http.MethodGet, got.Method)
	q := got.URL.Query()
	require.Equal(t, "Eggplant", q.Get("query"))
	require.Equal(t, "secret", q.Get("api_key"))
	require.Equal(t, "1", q.Get("pageSize"))
}

func TestUSDAClient_EmptyFoods(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"foods":[]}`)
	c := NewUSDAClient(srv.URL, "key", srv.Client())

	record, err := c.Lookup(context.Background(), "Okra")
	require.ErrorIs(t, err, entity.ErrNoNutritionData)
	require.Nil(t, record)
}

func TestUSDAClient_FirstFiveInOrder(t *testing.T) {
	body := `{"foods":[{"foodNutrients":[
		{"nutrientName":"Protein","value":1.09},
		{"nutrientName":"Total lipid (fat)","value":0.33},
		{"nutrientName":"Carbohydrate, by difference","value":22.8},
		{"nutrientName":"Energy","value":89},
		{"nutrientName":"Sugars, total","value":12.2},
		{"nutrientName":"Fiber","value":2.6},
		{"nutrientName":"Potassium, K","value":358}
	]}]}`
	srv := newTestServer(t, http.StatusOK, body)
	c := NewUSDAClient(srv.URL, "key", srv.Client())

	record, err := c.Lookup(context.Background(), "Banana")
	require.NoError(t, err)
	require.Equal(t, entity.NutritionRecord{
		{Name: "Protein", Value: 1.09},
		{Name: "Total lipid (fat)", Value: 0.33},
		{Name: "Carbohydrate, by difference", Value: 22.8},
		{Name: "Energy", Value: 89},
		{Name: "Sugars, total", Value: 12.2},
	}, record)
}

func TestUSDAClient_RepeatedNutrientName(t *testing.T) {
	body := `{"foods":[{"foodNutrients":[
		{"nutrientName":"Energy","value":22},
		{"nutrientName":"Protein","value":1.1},
		{"nutrientName":"Energy","value":92}
	]}]}`
	srv := newTestServer(t, http.StatusOK, body)
	c := NewUSDAClient(srv.URL, "key", srv.Client())

	record, err := c.Lookup(context.Background(), "Onion")
	require.NoError(t, err)
	require.Equal(t, entity.NutritionRecord{
		{Name: "Energy", Value: 92},
		{Name: "Protein", Value: 1.1},
	}, record)
}

func TestUSDAClient_Failures(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"foods":[{"foodNutrients":[]}]}`},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"bad key"}`},
		{name: "malformed body", status: http.StatusOK, body: `{"foods":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, tc.status, tc.body)
			c := NewUSDAClient(srv.URL, "key", srv.Client())

			_, err := c.Lookup(context.Background(), "Tomato")
			require.ErrorIs(t, err, entity.ErrNoNutritionData)
		})
	}
}

func TestUSDAClient_TransportError(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	c := NewUSDAClient(url, "key", nil)
	_, err := c.Lookup(context.Background(), "Tomato")
	require.ErrorIs(t, err, entity.ErrNoNutritionData)
}
