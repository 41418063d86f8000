// Package scanner walks library roots and keeps the scan ledger in sync
// with the filesystem.
//
// A scan records every eligible file as a ledger entry carrying its filename
// validation verdict, skips files it has already seen, and links files that
// already own a catalog version. After the walk the reconciler removes
// versions whose files vanished from disk and products left without any
// version. A per-root lock file keeps concurrent scans of the same root from
// racing on the existence checks.
package scanner
