package model

// Hall is a screening hall.  Rows and SeatsPerRow describe the grid the
// seat layout was generated from; the seats themselves live in the
// catalog.
type Hall struct {
    ID          string `json:"id"`
    Name        string `json:"name"`
    HallType    string `json:"hall_type"` // IMAX, Dolby, Standard, 4DX
    Rows        int    `json:"rows"`
    SeatsPerRow int    `json:"seats_per_row"`
}
