package assemble

import "testing"

func TestExpandVars(t *testing.T) {
	vars := map[string]string{"SOURCE_DIR": "./src", "TARGET": "docs"}

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"single placeholder", "@SOURCE_DIR@", "./src"},
		{"embedded placeholder", "INPUT=@SOURCE_DIR@/api", "INPUT=./src/api"},
		{"multiple placeholders", "@TARGET@:@SOURCE_DIR@", "docs:./src"},
		{"unknown expands empty", "x@UNKNOWN@y", "xy"},
		{"no placeholder", "plain", "plain"},
		{"lone at signs untouched", "a@b", "a@b"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExpandVars(test.in, vars); got != test.expected {
				t.Errorf("ExpandVars(%q) = %q, want %q", test.in, got, test.expected)
			}
		})
	}
}

func TestExpandArgvDropsEmptied(t *testing.T) {
	vars := map[string]string{"CONFIG_FILE": "docs.conf"}
	argv := expandArgv([]string{"doxygen", "@CONFIG_FILE@", "@UNSET_FLAG@"}, vars)

	if len(argv) != 2 || argv[0] != "doxygen" || argv[1] != "docs.conf" {
		t.Errorf("expandArgv = %v, want [doxygen docs.conf]", argv)
	}
}
