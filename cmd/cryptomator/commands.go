package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tristann9/cryptomator"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new vault or unlock an existing one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openVault(true); err != nil {
			return err
		}
		fmt.Println("vault ready")
		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a folder inside the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parents, _ := cmd.Flags().GetBool("parents")
		fs, err := openVault(false)
		if err != nil {
			return err
		}
		mode := cryptomator.FailIfParentMissing
		if parents {
			mode = cryptomator.IncludingParents
		}
		return fs.Folder(args[0]).Create(mode)
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List a vault folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVault(false)
		if err != nil {
			return err
		}
		folder := fs.Root()
		if len(args) == 1 {
			folder = fs.Folder(args[0])
		}
		folders, err := folder.Folders()
		if err != nil {
			return err
		}
		for _, sub := range folders {
			fmt.Println(sub.Name() + "/")
		}
		files, err := folder.Files()
		if err != nil {
			return err
		}
		for _, file := range files {
			fmt.Println(file.Name())
		}
		return nil
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <src> <dst>",
	Short: "Move a file or folder inside the vault",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVault(false)
		if err != nil {
			return err
		}
		srcFolder := fs.Folder(args[0])
		if ok, err := srcFolder.Exists(); err != nil {
			return err
		} else if ok {
			return srcFolder.MoveTo(fs.Folder(args[1]))
		}
		return fs.File(args[0]).MoveTo(fs.File(args[1]))
	},
}

var putCmd = &cobra.Command{
	Use:   "put <local> <path>",
	Short: "Copy a local file into the vault",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVault(false)
		if err != nil {
			return err
		}
		src, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := fs.File(args[1]).OpenWritable()
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			return err
		}
		return dst.Close()
	},
}

var getCmd = &cobra.Command{
	Use:   "get <path> [local]",
	Short: "Copy a vault file out, or to stdout",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVault(false)
		if err != nil {
			return err
		}
		src, err := fs.File(args[0]).OpenReadable()
		if err != nil {
			return err
		}
		defer src.Close()
		var dst io.Writer = os.Stdout
		if len(args) == 2 {
			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()
			dst = out
		}
		_, err = io.Copy(dst, src)
		return err
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a file or folder from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openVault(false)
		if err != nil {
			return err
		}
		folder := fs.Folder(args[0])
		if ok, err := folder.Exists(); err != nil {
			return err
		} else if ok {
			return folder.Delete()
		}
		return fs.File(args[0]).Delete()
	},
}

func init() {
	mkdirCmd.Flags().BoolP("parents", "p", false, "create missing parent folders")
}
