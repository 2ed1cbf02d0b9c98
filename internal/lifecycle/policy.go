package lifecycle

// ExistsPolicy decides what happens when a run directory or output
// file already exists.
type ExistsPolicy byte

const (
	PolicySkip      ExistsPolicy = 's'
	PolicyOverwrite ExistsPolicy = 'o'
	PolicyBackup    ExistsPolicy = 'b'
)

// ParseExistsPolicy validates the -e option value.
func ParseExistsPolicy(s string) (ExistsPolicy, error) {
	switch s {
	case "s":
		return PolicySkip, nil
	case "o":
		return PolicyOverwrite, nil
	case "b":
		return PolicyBackup, nil
	default:
		return 0, &UnknownPolicyError{Value: s}
	}
}
