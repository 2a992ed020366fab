package config

// DefaultIgnoreBinaryExtensions lists archive/binary extensions that are
// never treated as notes even if placed inside the vault (defense in depth
// alongside DefaultIncludeExtensions, which is allow-list based).
var DefaultIgnoreBinaryExtensions = []string{".zip", ".tar", ".gz", ".exe", ".bin", ".dmg", ".iso"}
