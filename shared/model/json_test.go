package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"voyage/shared/model"
)

type traveler struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestJSON_ValueScan(t *testing.T) {
	src := model.NewJSON([]traveler{{Name: "Ada", Age: 36}})

	raw, err := src.Value()
	require.NoError(t, err)

	var dst model.JSON[[]traveler]
	require.NoError(t, dst.Scan(raw))
	assert.Equal(t, src.Val, dst.Val)

	require.NoError(t, dst.Scan(`[{"name":"Lin","age":4}]`))
	assert.Equal(t, "Lin", dst.Val[0].Name)

	require.NoError(t, dst.Scan(nil))
	assert.Nil(t, dst.Val)

	assert.Error(t, dst.Scan(42))
}
