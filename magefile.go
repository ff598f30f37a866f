//go:build mage

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.shabbyrobe.org/gocovmerge"
	"golang.org/x/tools/cover"
)

// Cover runs the tests of every package with coverage of all packages and
// prints the merged profile.
func Cover() {
	pkgs := goList()

	var files []string

	for idx, pkg := range pkgs {
		covFile := fmt.Sprintf("cover-%d.out", idx)
		files = append(files, covFile)
		cmd := exec.Command("go", "test",
			fmt.Sprintf("-coverprofile=%s", covFile),
			fmt.Sprintf("-coverpkg=%s", strings.Join(pkgs, ",")),
			pkg,
		)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			panic(err)
		}
	}

	var merged []*cover.Profile
	for _, file := range files {
		profiles, err := cover.ParseProfiles(file)
		if err != nil {
			panic(fmt.Errorf("failed to parse profiles: %v", err))
		}
		for _, p := range profiles {
			merged = gocovmerge.AddProfile(merged, p)
		}
		os.Remove(file)
	}

	gocovmerge.DumpProfiles(merged, os.Stdout)
}

// Assume runs the listing checks of internal/s3assumer against the endpoint
// in S3_ENDPOINT, using the bucket prefix in S3_BUCKET_PREFIX.
func Assume() error {
	endpoint := os.Getenv("S3_ENDPOINT")
	prefix := os.Getenv("S3_BUCKET_PREFIX")
	if prefix == "" {
		return fmt.Errorf("S3_BUCKET_PREFIX is required")
	}

	args := []string{"run", "./internal/s3assumer", "-bucketprefix", prefix}
	if endpoint != "" {
		args = append(args, "-endpoint", endpoint, "-pathstyle")
	}
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func goList() (pkgs []string) {
	cmd := exec.Command("go", "list", "./...")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		panic(err)
	}

	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		pkgs = append(pkgs, line)
	}
	return pkgs
}
