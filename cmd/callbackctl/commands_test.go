package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycallback/internal/repository"
	"paycallback/internal/testutil"
)

func TestProvidersCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := providersCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "POST /callback/tripay\n")
	assert.Contains(t, out.String(), "POST /callback/donate\n")
}

func TestReplayRejectsBadID(t *testing.T) {
	cmd := replayCmd()
	cmd.SetArgs([]string{"abc"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.ErrorContains(t, cmd.Execute(), "invalid callback log id")
}

func TestDonateRate(t *testing.T) {
	settings := repository.NewSettingRepository(testutil.NewDB(t))

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{name: "show default", args: nil, want: "donate rate: 100%\n"},
		{name: "set", args: []string{"150"}, want: "donate rate: 150%\n"},
		{name: "show updated", args: nil, want: "donate rate: 150%\n"},
		{name: "not a number", args: []string{"abc"}, wantErr: "invalid donate rate"},
		{name: "zero", args: []string{"0"}, wantErr: "invalid donate rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)
			cmd.SetContext(context.Background())

			err := runDonateRate(cmd, settings, tt.args)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}
