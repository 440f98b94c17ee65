package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindgraph/pkg/errors"
)

type sampleRequest struct {
	Name      string   `json:"name" validate:"required,max=5"`
	Direction string   `json:"direction" validate:"omitempty,layoutdir"`
	Move      string   `json:"move" validate:"omitempty,direction"`
	Handle    string   `json:"handle" validate:"handle"`
	IDs       []string `json:"ids" validate:"dive,required"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sampleRequest{Name: "ok", Direction: "DOWN", Move: "up", Handle: "top"}))

	err := ValidateStruct(sampleRequest{Name: "too long", Direction: "NORTH", Move: "sideways", Handle: "middle", IDs: []string{""}})
	require.Error(t, err)

	verrs, ok := err.(*errors.ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, []string{"name must be at most 5"}, verrs.Fields["name"])
	assert.Contains(t, verrs.Fields, "direction")
	assert.Contains(t, verrs.Fields, "move")
	assert.Contains(t, verrs.Fields, "handle")
	assert.Contains(t, verrs.Fields, "ids[0]")
}

func TestValidateStruct_Required(t *testing.T) {
	err := ValidateStruct(sampleRequest{})
	require.Error(t, err)
	assert.Equal(t, []string{"name is required"}, err.(*errors.ValidationErrors).Fields["name"])
}
