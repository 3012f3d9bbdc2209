package common

import "os"

// DEFAULT_FILE_PERM on Windows retains 0644; Windows has no POSIX umask.
var DEFAULT_FILE_PERM os.FileMode = 0644
