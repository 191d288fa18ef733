package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     CommandType
		wantArgs []string
		wantErr  bool
	}{
		{name: "Should default to help on empty text", text: "", want: CmdHelp},
		{name: "Should default to help on blank text", text: "   ", want: CmdHelp},
		{name: "Should parse on", text: "on", want: CmdOn},
		{name: "Should parse enable alias", text: "Enable", want: CmdOn},
		{name: "Should parse off", text: "off", want: CmdOff},
		{name: "Should parse unsubscribe alias", text: "unsubscribe", want: CmdOff},
		{name: "Should parse run with args", text: "run now please", want: CmdRun, wantArgs: []string{"now", "please"}},
		{name: "Should parse status", text: "  status ", want: CmdStatus},
		{name: "Should parse help", text: "help", want: CmdHelp},
		{name: "Should reject unknown commands", text: "dance", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.text)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, cmd)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Type)
			assert.Equal(t, tt.wantArgs, cmd.Args)
		})
	}
}

func TestGetHelpText(t *testing.T) {
	help := GetHelpText()

	for _, c := range []string{"on", "off", "run", "status", "help"} {
		assert.Contains(t, help, "`/devotional "+c+"`")
	}
}
