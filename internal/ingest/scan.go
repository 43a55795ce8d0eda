// Package ingest uploads third-party social-media post bundles: it matches
// local attachment files to parsed posts, uploads media to the object store,
// and creates post records that are idempotent under two independent keys.
package ingest

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/hoganho/kingsroom-sub004/internal/postparse"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Folder is one post bundle: a manifest plus its attachment candidates,
// grouped by parent directory.
type Folder struct {
	Path         string
	ManifestPath string
	Images       []string
}

// Item is one post ready for upload: the parsed post, the raw manifest for
// the record's rawContent, and the matched attachment paths.
type Item struct {
	Post            postparse.ReviewablePost
	Manifest        map[string]interface{}
	AttachmentPaths []string
}

// ScanDir walks a bundle directory and groups files into folders. A file
// named post.json is the folder's manifest; failing that, the first *.json
// in name order is.
func ScanDir(root string) ([]Folder, error) {
	byDir := map[string]*Folder{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		dir := filepath.Dir(path)
		folder, ok := byDir[dir]
		if !ok {
			folder = &Folder{Path: dir}
			byDir[dir] = folder
		}

		ext := strings.ToLower(filepath.Ext(path))
		switch {
		case ext == ".json":
			if filepath.Base(path) == "post.json" {
				folder.ManifestPath = path
			} else if folder.ManifestPath == "" || (filepath.Base(folder.ManifestPath) != "post.json" && path < folder.ManifestPath) {
				folder.ManifestPath = path
			}
		case imageExtensions[ext]:
			folder.Images = append(folder.Images, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", root)
	}

	folders := make([]Folder, 0, len(byDir))
	for _, f := range byDir {
		if f.ManifestPath == "" {
			continue
		}
		sort.Strings(f.Images)
		folders = append(folders, *f)
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
	return folders, nil
}

// LoadDir scans a bundle directory and parses every manifest into an Item.
// Folders whose manifest cannot be decoded are skipped; the caller sees the
// remainder.
func LoadDir(root string, opts postparse.Options) ([]Item, []error) {
	folders, err := ScanDir(root)
	if err != nil {
		return nil, []error{err}
	}

	var items []Item
	var errs []error
	for _, folder := range folders {
		item, err := loadFolder(folder, opts)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "folder %s", folder.Path))
			continue
		}
		items = append(items, item)
	}
	return items, errs
}

func loadFolder(folder Folder, opts postparse.Options) (Item, error) {
	data, err := os.ReadFile(folder.ManifestPath)
	if err != nil {
		return Item{}, errors.Wrap(err, "read manifest")
	}

	var raw postparse.RawPost
	if err := json.Unmarshal(data, &raw); err != nil {
		return Item{}, errors.Wrap(err, "decode manifest")
	}
	var manifest map[string]interface{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Item{}, errors.Wrap(err, "decode manifest map")
	}

	post := postparse.ParseSocialPost(raw, opts)
	attachments := MatchAttachments(raw, folder.Images)
	post.AttachmentFiles = attachments

	return Item{Post: post, Manifest: manifest, AttachmentPaths: attachments}, nil
}

// MatchAttachments resolves a manifest's attachment references against the
// image files found in its folder. Explicit references match by exact name
// first, then case-insensitively. A manifest with no resolvable references
// claims every image in the folder.
func MatchAttachments(raw postparse.RawPost, images []string) []string {
	byName := map[string]string{}
	byLower := map[string]string{}
	for _, img := range images {
		base := filepath.Base(img)
		byName[base] = img
		byLower[strings.ToLower(base)] = img
	}

	var wanted []string
	if len(raw.Attachments) > 0 {
		wanted = raw.Attachments
	} else {
		for _, det := range raw.AttachmentsDetails {
			if det.LocalPath != "" {
				wanted = append(wanted, filepath.Base(det.LocalPath))
			}
		}
	}

	matched := []string{}
	seen := map[string]bool{}
	for _, name := range wanted {
		path, ok := byName[name]
		if !ok {
			path, ok = byLower[strings.ToLower(name)]
		}
		if ok && !seen[path] {
			seen[path] = true
			matched = append(matched, path)
		}
	}

	if len(matched) == 0 && len(images) > 0 {
		return append([]string{}, images...)
	}
	return matched
}
