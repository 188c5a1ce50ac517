// Package archive expands downloaded zip archives into the object store's
// result_files/ tree so each member can be processed as its own source file.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"tripdata/internal/storage"
)

// dataExtensions are the member types worth extracting. Everything else in
// the published archives is packaging noise.
var dataExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// Expand reads the zip object at key and writes each data member under
// prefix/<zip-base>/, returning the stored member keys in archive order.
//
// Members are filtered: only .csv and .xlsx files are kept, and macOS
// packaging artifacts (__MACOSX/, dot-underscore files) are skipped. Member
// paths are flattened to their base name; the published archives never carry
// meaningful directory structure.
func Expand(ctx context.Context, objects storage.ObjectStore, key, prefix string) ([]string, error) {
	rc, err := objects.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", key, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", key, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("archive: parse %s: %w", key, err)
	}

	base := strings.TrimSuffix(path.Base(key), ".zip")
	var keys []string
	for _, member := range zr.File {
		name := path.Base(member.Name)
		if skipMember(member.Name, name) {
			continue
		}
		dst := path.Join(prefix, base, name)

		mr, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("archive: open member %s in %s: %w", member.Name, key, err)
		}
		err = objects.Put(ctx, dst, mr, contentType(name))
		mr.Close()
		if err != nil {
			return nil, fmt.Errorf("archive: store member %s: %w", dst, err)
		}
		keys = append(keys, dst)
	}
	return keys, nil
}

func skipMember(fullName, baseName string) bool {
	if strings.HasPrefix(fullName, "__MACOSX/") || strings.HasPrefix(baseName, "._") || strings.HasPrefix(baseName, ".") {
		return true
	}
	return !dataExtensions[strings.ToLower(path.Ext(baseName))]
}

func contentType(name string) string {
	if strings.EqualFold(path.Ext(name), ".csv") {
		return "text/csv"
	}
	return "application/octet-stream"
}
