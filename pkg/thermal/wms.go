package thermal

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultEndpoint = "https://gibs.earthdata.nasa.gov/wms/epsg4326/best/wms.cgi"
	DefaultLayer    = "MODIS_Terra_Land_Surface_Temp_Day"
	DefaultWidth    = 2048
	DefaultHeight   = 1024
	DefaultRadius   = 5

	// DateLayout is the WMS TIME format.
	DateLayout = "2006-01-02"
)

// SnapshotURL builds a WMS 1.3.0 GetMap request for a whole-globe PNG of
// layer on the given day.
func SnapshotURL(endpoint, layer string, day time.Time, width, height int) string {
	params := url.Values{}
	params.Set("SERVICE", "WMS")
	params.Set("VERSION", "1.3.0")
	params.Set("REQUEST", "GetMap")
	params.Set("LAYERS", layer)
	params.Set("TIME", day.Format(DateLayout))
	params.Set("CRS", "EPSG:4326")
	params.Set("BBOX", "-90,-180,90,180")
	params.Set("WIDTH", strconv.Itoa(width))
	params.Set("HEIGHT", strconv.Itoa(height))
	params.Set("FORMAT", "image/png")

	return fmt.Sprintf("%s?%s", endpoint, params.Encode())
}
