package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var (
	dataDir   = flag.String("data-dir", "/var/lib/tablestore", "tablestore data directory")
	compact   = flag.Bool("compact", false, "Rewrite the database into a fresh, defragmented file")
	dumpTable = flag.String("dump-table", "", "Dump every entity in the named bucket (e.g. 'devstoreaccount1$Widgets') as JSON")
)

func main() {
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("tablestore Admin Tool")
	log.Println("======================")

	dbPath := filepath.Join(*dataDir, "tablestore.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("database not found at %s", dbPath)
	}
	log.Printf("Database: %s", dbPath)

	switch {
	case *compact:
		if err := compactDatabase(dbPath); err != nil {
			log.Fatalf("compaction failed: %v", err)
		}
	case *dumpTable != "":
		if err := dumpBucket(dbPath, *dumpTable); err != nil {
			log.Fatalf("dump failed: %v", err)
		}
	default:
		if err := listBuckets(dbPath); err != nil {
			log.Fatalf("listing buckets failed: %v", err)
		}
	}
}

// listBuckets is the default, read-only action: enumerate every bucket
// and its key count, so an operator can see what's in the file before
// choosing --compact or --dump-table.
func listBuckets(dbPath string) error {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			log.Printf("  %-40s %d keys", name, b.Stats().KeyN)
			return nil
		})
	})
}

// dumpBucket prints every key/value in the named bucket as a JSON
// object, for inspecting a single table's entities without a running
// tablestore process.
func dumpBucket(dbPath, bucket string) error {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("no such bucket: %s", bucket)
		}
		return b.ForEach(func(k, v []byte) error {
			var record map[string]any
			if err := json.Unmarshal(v, &record); err != nil {
				log.Printf("⚠ skipping key %q: invalid JSON: %v", k, err)
				return nil
			}
			out, err := json.MarshalIndent(record, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		})
	})
}

// compactDatabase rewrites every bucket into a fresh file via bbolt's
// documented compaction recipe (copy key-by-key into new buckets on a
// brand-new file) rather than bolt.Tx.CopyFile, which preserves free
// pages and wouldn't shrink a fragmented file. The original is left in
// place; the caller swaps it in once satisfied.
func compactDatabase(dbPath string) error {
	src, err := bolt.Open(dbPath, 0o600, &bolt.Options{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	dstPath := dbPath + ".compact"
	dst, err := bolt.Open(dstPath, 0o600, nil)
	if err != nil {
		return fmt.Errorf("failed to create destination database: %w", err)
	}
	defer dst.Close()

	err = src.View(func(srcTx *bolt.Tx) error {
		return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
			return dst.Update(func(dstTx *bolt.Tx) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return fmt.Errorf("failed to create bucket %s: %w", name, err)
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})
	if err != nil {
		_ = os.Remove(dstPath)
		return err
	}

	log.Printf("✓ Compacted database written to %s", dstPath)
	log.Printf("Replace the original once verified:")
	log.Printf("  mv %s %s", dstPath, dbPath)
	return nil
}
