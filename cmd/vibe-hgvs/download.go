package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// gencodeURLs returns the GTF, transcript FASTA and genome FASTA URLs for
// the given assembly. Unknown assemblies fall back to GRCh38.
func gencodeURLs(assembly string) (gtfURL, fastaURL, genomeURL string) {
	if strings.EqualFold(assembly, "GRCh37") {
		gtfURL = fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
		fastaURL = fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.pc_transcripts.fa.gz", gencodeBaseURL, gencodeVersion)
		genomeURL = fmt.Sprintf("%s/GRCh37_mapping/%s", gencodeBaseURL, genomeFileName(assembly))
		return
	}
	gtfURL = fmt.Sprintf("%s/gencode.%s.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
	fastaURL = fmt.Sprintf("%s/gencode.%s.pc_transcripts.fa.gz", gencodeBaseURL, gencodeVersion)
	genomeURL = fmt.Sprintf("%s/%s", gencodeBaseURL, genomeFileName(assembly))
	return
}

// genomeFileName is the GENCODE primary assembly FASTA for the assembly.
func genomeFileName(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return "GRCh37.primary_assembly.genome.fa.gz"
	}
	return "GRCh38.primary_assembly.genome.fa.gz"
}

func newDownloadCmd(logger func() *zap.Logger) *cobra.Command {
	var (
		gtfOnly    bool
		skipGenome bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download GENCODE annotation and reference files",
		Long: `Download GENCODE annotation files into the cache directory:

  gencode.v46.annotation.gtf.gz            gene models (~50MB)
  gencode.v46.pc_transcripts.fa.gz         coding sequences for protein HGVS (~70MB)
  GRCh38.primary_assembly.genome.fa.gz     reference genome for indels (~900MB)

Files that already exist are skipped.`,
		Example: `  vibe-hgvs download
  vibe-hgvs download --assembly GRCh37
  vibe-hgvs download --skip-genome --cache-dir /data/vibe-hgvs`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}

			log := logger()
			gtfURL, fastaURL, genomeURL := gencodeURLs(viper.GetString("assembly"))
			urls := []string{gtfURL}
			if !gtfOnly {
				urls = append(urls, fastaURL)
				if !skipGenome {
					urls = append(urls, genomeURL)
				}
			}

			client := &http.Client{Timeout: 60 * time.Minute}
			for _, u := range urls {
				dest := filepath.Join(dir, filepath.Base(u))
				if err := downloadFile(client, u, dest, log); err != nil {
					return fmt.Errorf("download %s: %w", filepath.Base(u), err)
				}
			}
			log.Info("download complete", zap.String("dir", dir))
			return nil
		},
	}

	cmd.Flags().BoolVar(&gtfOnly, "gtf-only", false, "Only download GTF annotations")
	cmd.Flags().BoolVar(&skipGenome, "skip-genome", false, "Do not download the reference genome")
	return cmd
}

// downloadFile downloads url to destPath via a temporary file, logging
// progress. Existing files are left alone.
func downloadFile(client *http.Client, url, destPath string, logger *zap.Logger) error {
	log := logger.With(zap.String("file", filepath.Base(destPath)))
	if info, err := os.Stat(destPath); err == nil {
		log.Info("already exists, skipping", zap.String("size", formatSize(info.Size())))
		return nil
	}

	log.Info("downloading", zap.String("url", url))
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{total: resp.ContentLength, lastLog: time.Now(), logger: log}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	log.Info("done", zap.String("size", formatSize(pw.downloaded)))
	return nil
}

// progressWriter logs download progress every few seconds.
type progressWriter struct {
	total      int64
	downloaded int64
	lastLog    time.Time
	logger     *zap.Logger
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.downloaded += int64(len(p))
	if time.Since(pw.lastLog) > 5*time.Second {
		fields := []zap.Field{zap.String("downloaded", formatSize(pw.downloaded))}
		if pw.total > 0 {
			fields = append(fields, zap.Float64("percent", float64(pw.downloaded)/float64(pw.total)*100))
		}
		pw.logger.Info("progress", fields...)
		pw.lastLog = time.Now()
	}
	return len(p), nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
