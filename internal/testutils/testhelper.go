package testutils

import "os"

func testLogsEnabled() bool {
	return os.Getenv("BLEGATE_TEST_LOGS") != ""
}
