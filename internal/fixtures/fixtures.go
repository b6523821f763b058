// Package fixtures packs a block and its receipts into a tar archive (plain,
// gzip or bzip2 compressed) and reads them back, so proofs can be replayed
// without a node.
package fixtures

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	bzip2w "github.com/dsnet/compress/bzip2"
	jsoniter "github.com/json-iterator/go"

	"github.com/erigontech/receipt-prover/internal/eth"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Supported compression types.
const (
	GzipCompression  = ".gz"
	Bzip2Compression = ".bz2"
	NoCompression    = ""
)

// fixtureFileName is the single member every fixture archive contains.
const fixtureFileName = "fixture.json"

// BlockFixture is one block and its receipts, kept as the raw JSON-RPC
// result objects so the archive reproduces exactly what the node returned.
type BlockFixture struct {
	Block    jsoniter.RawMessage   `json:"block"`
	Receipts []jsoniter.RawMessage `json:"receipts"`
}

// DecodeBlock parses the fixture's block.
func (f *BlockFixture) DecodeBlock() (*eth.Block, error) {
	return eth.DecodeBlock(f.Block)
}

// DecodeReceipts parses the fixture's receipts, in block order.
func (f *BlockFixture) DecodeReceipts() ([]*eth.Receipt, error) {
	receipts := make([]*eth.Receipt, 0, len(f.Receipts))
	for i, raw := range f.Receipts {
		receipt, err := eth.DecodeReceipt(raw)
		if err != nil {
			return nil, fmt.Errorf("✘ fixture receipt %d: %w", i, err)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// compressionForName determines the compression from the filename extension.
func compressionForName(filename string) string {
	if strings.HasSuffix(filename, ".tar.gz") || strings.HasSuffix(filename, ".tgz") {
		return GzipCompression
	}
	if strings.HasSuffix(filename, ".tar.bz2") || strings.HasSuffix(filename, ".tbz") {
		return Bzip2Compression
	}
	return NoCompression
}

// Write stores the fixture at path as a single-member tar archive,
// compressed according to the filename extension.
func Write(path string, fixture *BlockFixture) error {
	payload, err := json.Marshal(fixture)
	if err != nil {
		return fmt.Errorf("✘ cannot marshal fixture: %w", err)
	}

	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("✘ I/O Error!\n✘ cannot create %s: %w", path, err)
	}
	defer outFile.Close()

	var writer io.WriteCloser = outFile
	switch compressionForName(path) {
	case GzipCompression:
		writer = gzip.NewWriter(outFile)
		defer writer.Close()
	case Bzip2Compression:
		bz, err := bzip2w.NewWriter(outFile, &bzip2w.WriterConfig{Level: bzip2w.BestCompression})
		if err != nil {
			return fmt.Errorf("✘ cannot create bzip2 writer: %w", err)
		}
		writer = bz
		defer writer.Close()
	}

	tarWriter := tar.NewWriter(writer)
	header := &tar.Header{
		Name:    fixtureFileName,
		Mode:    0644,
		Size:    int64(len(payload)),
		ModTime: time.Now(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("✘ cannot write tar header: %w", err)
	}
	if _, err := tarWriter.Write(payload); err != nil {
		return fmt.Errorf("✘ cannot write fixture payload: %w", err)
	}
	return tarWriter.Close()
}

// autodetectCompression sniffs the archive when the extension is unhelpful:
// try plain tar first, then gzip, then bzip2.
func autodetectCompression(inFile *os.File) (string, error) {
	compressionType := NoCompression
	tarReader := tar.NewReader(inFile)
	if _, err := tarReader.Next(); err != nil && !errors.Is(err, io.EOF) {
		if _, err = inFile.Seek(0, io.SeekStart); err != nil {
			return compressionType, err
		}
		if _, err = gzip.NewReader(inFile); err == nil {
			compressionType = GzipCompression
		} else {
			if _, err = inFile.Seek(0, io.SeekStart); err != nil {
				return compressionType, err
			}
			if _, err = tar.NewReader(bzip2.NewReader(inFile)).Next(); err == nil {
				compressionType = Bzip2Compression
			}
		}
	}
	return compressionType, nil
}

// Read loads a fixture archive written by Write (or any tar whose first
// member is a regular file holding the fixture document). Only that first
// member is read; an archive whose first member is not a regular file is
// rejected.
func Read(path string) (*BlockFixture, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("✘ I/O Error!\n✘ cannot open %s: %w", path, err)
	}
	defer inputFile.Close()

	compressionType := compressionForName(path)
	if compressionType == NoCompression {
		compressionType, err = autodetectCompression(inputFile)
		if err != nil {
			return nil, fmt.Errorf("✘ cannot autodetect compression for %s: %w", path, err)
		}
		if _, err = inputFile.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}

	var reader io.Reader = inputFile
	switch compressionType {
	case GzipCompression:
		if reader, err = gzip.NewReader(inputFile); err != nil {
			return nil, fmt.Errorf("✘ cannot create gzip reader: %w", err)
		}
	case Bzip2Compression:
		reader = bzip2.NewReader(inputFile)
	}

	tarReader := tar.NewReader(reader)
	header, err := tarReader.Next()
	if err != nil {
		return nil, fmt.Errorf("✘ cannot read tar header of %s: %w", path, err)
	}
	if header.Typeflag != tar.TypeReg {
		return nil, fmt.Errorf("✘ fixture archive must contain a single JSON file, found %s", header.Name)
	}

	var fixture BlockFixture
	if err := json.NewDecoder(tarReader).Decode(&fixture); err != nil {
		return nil, fmt.Errorf("✘ cannot parse fixture JSON in %s: %w", path, err)
	}
	return &fixture, nil
}
