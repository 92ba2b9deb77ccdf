package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-fills/pkg/errors"
)

// CheckCompatibility checks the engine version against the version constraint a scenario
// declares, e.g. "^0.4" or ">= 0.3, < 1.0". An empty constraint and development builds
// ("main") always pass.
func CheckCompatibility(engineVersion, constraint string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	if constraint == "" || engineVersion == "main" {
		return nil
	}

	engine, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid engine version %q", engineVersion)
	}

	required, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid version constraint %q", constraint)
	}

	if ok, reasons := required.Validate(engine); !ok {
		messages := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			messages = append(messages, reason.Error())
		}

		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"engine %s does not satisfy %q: %s", engine, constraint, strings.Join(messages, "; "))
	}

	return nil
}
