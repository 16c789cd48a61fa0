package project_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiverlab/codegraph/internal/project"
)

func TestValidate(t *testing.T) {
	require.NoError(t, project.Validate("my-service"))
	require.ErrorIs(t, project.Validate(""), project.ErrEmptyProjectID)

	long := strings.Repeat("a", project.MaxIdentifierLength+1)
	require.Error(t, project.Validate(long))
}
