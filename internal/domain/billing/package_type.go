package billing

import (
	"errors"
	"fmt"
)

type PackageType string

const (
	PackageSingleTester PackageType = "single_tester"
	PackageFullPackage  PackageType = "full_package"
	PackageLightTest    PackageType = "light_test"
	PackageDeepTest     PackageType = "deep_test"
)

var ErrUnknownPackageType = errors.New("unknown package type")

func ParsePackageType(s string) (PackageType, error) {
	switch PackageType(s) {
	case PackageSingleTester, PackageFullPackage, PackageLightTest, PackageDeepTest:
		return PackageType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPackageType, s)
}
