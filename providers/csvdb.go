package providers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/EvilSuperstars/go-cidrman"
	"github.com/asergeyev/nradix"

	"github.com/wayfinder-io/wayfinder/waylib"
)

const NameCSV = "csvdb"

// csvDatabase answers lookups from a radix tree compiled out of a CSV
// range file. IPv4 only: public range datasets in this format rarely
// carry usable IPv6 data.
type csvDatabase struct {
	tree *nradix.Tree
}

func (c *csvDatabase) Name() string {
	return NameCSV
}

func (c *csvDatabase) Lookup(ctx context.Context, ip net.IP) (waylib.Location, error) {
	if ip.To4() == nil {
		return waylib.Location{}, ErrNoRecord
	}

	value, err := c.tree.FindCIDR(ip.To4().String() + "/32")
	if err != nil {
		return waylib.Location{}, fmt.Errorf("cannot lookup this ip address: %w", err)
	}

	if value == nil {
		return waylib.Location{}, ErrNoRecord
	}

	return value.(waylib.Location), nil
}

// csvRecord is a single parsed row: start_ip,finish_ip,latitude,longitude.
type csvRecord struct {
	startIP  string
	finishIP string
	location waylib.Location
}

func parseCSVRecord(data []string) (*csvRecord, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("too few fields: %d", len(data))
	}

	startIP := net.ParseIP(data[0])
	finishIP := net.ParseIP(data[1])

	if startIP == nil || startIP.To4() == nil || finishIP == nil || finishIP.To4() == nil {
		return nil, fmt.Errorf("incorrect ip range %s-%s", data[0], data[1])
	}

	latitude, err := strconv.ParseFloat(data[2], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot parse latitude: %w", err)
	}

	longitude, err := strconv.ParseFloat(data[3], 64)
	if err != nil {
		return nil, fmt.Errorf("cannot parse longitude: %w", err)
	}

	location, err := waylib.NewLocation(latitude, longitude)
	if err != nil {
		return nil, err
	}

	return &csvRecord{
		startIP:  data[0],
		finishIP: data[1],
		location: location,
	}, nil
}

func addRecord(tree *nradix.Tree, record *csvRecord) error {
	subnets, err := cidrman.IPRangeToCIDRs(record.startIP, record.finishIP)
	if err != nil {
		return fmt.Errorf("cannot split a range into subnets: %w", err)
	}

	for _, cidr := range subnets {
		if err := tree.AddCIDR(cidr, record.location); err != nil {
			if err != nradix.ErrNodeBusy {
				return fmt.Errorf("cannot add cidr %s: %w", cidr, err)
			}

			if err := tree.SetCIDR(cidr, record.location); err != nil {
				return fmt.Errorf("cannot set cidr %s: %w", cidr, err)
			}
		}
	}

	return nil
}

// NewCSVDatabase compiles a database out of CSV rows
// start_ip,finish_ip,latitude,longitude. Rows which cannot be parsed
// are skipped, '#' starts a comment.
func NewCSVDatabase(source io.Reader) (waylib.Database, error) {
	reader := csv.NewReader(source)
	reader.ReuseRecord = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	tree := nradix.NewTree(0)

	for {
		data, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("cannot read a record: %w", err)
		}

		record, err := parseCSVRecord(data)
		if err != nil {
			continue
		}

		if err := addRecord(tree, record); err != nil {
			return nil, err
		}
	}

	return &csvDatabase{tree: tree}, nil
}
