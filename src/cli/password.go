package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"
	"golang.org/x/term"
)

const minPasswordWarnLength = 8

// resolvePassword returns the master password for the database: from
// KEYRING_EXPORT_PASSWORD when set (non-interactive runs), otherwise from a
// hidden terminal prompt. Opening an existing database asks once; creating a
// new one asks twice and warns about short passwords.
func resolvePassword(out io.Writer, output string, existing bool) (string, error) {
	if pw := viper.GetString("password"); pw != "" {
		return pw, nil
	}

	if existing {
		fmt.Fprintf(out, "Enter password for existing database %s: ", output)
		return readPassword(out)
	}

	fmt.Fprintln(out, "\nYou need to set a master password for the KDBX database.")
	fmt.Fprintln(out, "It will be required to open the database in KeePass and cannot be recovered if lost.")
	fmt.Fprint(out, "\nEnter master password: ")
	pw, err := readPassword(out)
	if err != nil {
		return "", err
	}
	fmt.Fprint(out, "Repeat for confirmation: ")
	confirm, err := readPassword(out)
	if err != nil {
		return "", err
	}
	if pw != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(pw) < minPasswordWarnLength {
		fmt.Fprintf(out, "Warning: password is shorter than %d characters; consider a longer one.\n", minPasswordWarnLength)
	}
	return pw, nil
}

func readPassword(out io.Writer) (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
