package main

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

// getOriginalUser gets the user who invoked sudo
func getOriginalUser() (*user.User, error) {
	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" {
		return nil, fmt.Errorf("SUDO_USER environment variable not found")
	}
	return user.Lookup(sudoUser)
}

// invokerIDs returns the uid and gid of the user who invoked sudo
func invokerIDs() (int, int, error) {
	u, err := getOriginalUser()
	if err != nil {
		return 0, 0, fmt.Errorf("could not get original user: %v", err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid uid: %v", err)
	}

	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid gid: %v", err)
	}

	return uid, gid, nil
}

// chownToInvoker gives files created while running under sudo back to the
// invoking user. Reading the game's memory needs the elevated privileges for
// the whole run, so they can't be dropped the way a pure writer could.
// Directories are handled recursively; missing paths are skipped.
func chownToInvoker(paths ...string) error {
	if os.Geteuid() != 0 || os.Getenv("SUDO_USER") == "" {
		return nil
	}

	uid, gid, err := invokerIDs()
	if err != nil {
		return err
	}

	for _, path := range paths {
		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			return os.Lchown(p, uid, gid)
		})
		if err != nil {
			return fmt.Errorf("could not chown %s: %v", path, err)
		}
	}
	return nil
}
