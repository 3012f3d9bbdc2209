package common

import (
	"log"
	"os"
	"strconv"
)

// ComputeConcurrentFilterLimit returns the default ceiling on concurrently
// running filter/backend processes when the admin hasn't set one explicitly
// (spec §4.5's FilterLimit). PRINTSCHED_CONCURRENCY_VALUE overrides the
// computed default, mirroring how the admin can always hand-tune a sizing
// heuristic that got it wrong for their hardware.
func ComputeConcurrentFilterLimit(numOfCPUs int) int {
	override := os.Getenv("PRINTSCHED_CONCURRENCY_VALUE")
	if override != "" {
		val, err := strconv.ParseInt(override, 10, 64)
		if err != nil {
			log.Fatalf("error parsing the env PRINTSCHED_CONCURRENCY_VALUE %q failed with error %v",
				override, err)
		}
		return int(val)
	}

	// small machines: still allow enough concurrent filters that a handful
	// of multi-stage pipelines (rasterize | band | send-to-backend) don't
	// serialize against each other
	if numOfCPUs <= 4 {
		return 16
	}

	// extremely large machines: cap so we don't run out of file descriptors
	// servicing status pipes and spool files
	if 8*numOfCPUs > 150 {
		return 150
	}

	return 8 * numOfCPUs
}
