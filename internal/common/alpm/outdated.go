package alpm

import "sort"

// Outdated returns the installed packages that have a strictly newer version in
// the remote mapping, keyed by name and valued by the remote version.
// Packages without a remote entry are left out.
func Outdated(installed, remote map[string]string) map[string]string {
	updates := make(map[string]string)

	for name, localVersion := range installed {
		remoteVersion, ok := remote[name]
		if !ok {
			continue
		}
		if Vercmp(remoteVersion, localVersion) > 0 {
			updates[name] = remoteVersion
		}
	}

	return updates
}

// Names returns the package names of an outdated set in sorted order
func Names(updates map[string]string) []string {
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
