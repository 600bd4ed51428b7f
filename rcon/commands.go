package rcon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// GameMode is the short code a server uses for a game mode.  Codes are
// not case sensitive on the server; the upper-case form is customary.
type GameMode string

const (
	DeathMatch                    GameMode = "DM"
	KingOfTheHill                 GameMode = "KOTH"
	GunGame                       GameMode = "GUN"
	OneInTheChamber               GameMode = "OITC"
	SearchAndDestroy              GameMode = "SND"
	WW2TeamDeathMatch             GameMode = "WW2TDM"
	TeamDeathMatch                GameMode = "TDM"
	TroubleInTerroristTown        GameMode = "TTT"
	TroubleInTerroristTownClassic GameMode = "TTTclassic"
	WW2GunGame                    GameMode = "WW2GUN"
	ZombieWaveSurvival            GameMode = "ZWV"
	TheHidden                     GameMode = "HIDE"
	HiddenInfection               GameMode = "INFECTION"
	Push                          GameMode = "PUSH"
	PropHunt                      GameMode = "PH"
)

// AmmoType selects how ammunition is limited.
type AmmoType int

const (
	AmmoUnlimited AmmoType = iota
	AmmoLimitedGeneric
	AmmoLimitedSpecific
	AmmoCustom
	AmmoLimitedSpecial
	AmmoBoxless
)

// maxPauseSeconds is the longest pause the server accepts.
const maxPauseSeconds = 3600

// Result holds the two fields every response carries.
type Result struct {
	Command    string `json:"Command"`
	Successful bool   `json:"Successful"`
}

func (r *Result) succeeded() bool { return r.Successful }

// Player is one entry of RefreshList.
type Player struct {
	Username string `json:"Username"`
	UniqueID string `json:"UniqueId"`
}

// PlayerDetail is what the Inspect commands report about a player.
// Score fields arrive as strings.
type PlayerDetail struct {
	PlayerName string  `json:"PlayerName"`
	UniqueID   string  `json:"UniqueId"`
	KDA        string  `json:"KDA"`
	Score      string  `json:"Score"`
	Dead       bool    `json:"Dead"`
	Cash       string  `json:"Cash"`
	TeamID     string  `json:"TeamId"`
	Ping       float64 `json:"Ping"`
	Gag        bool    `json:"Gag"`
}

// ServerInfo describes the running match.
type ServerInfo struct {
	MapLabel    string `json:"MapLabel"`
	GameMode    string `json:"GameMode"`
	ServerName  string `json:"ServerName"`
	Teams       bool   `json:"Teams"`
	Team0Score  string `json:"Team0Score"`
	Team1Score  string `json:"Team1Score"`
	Round       string `json:"Round"`
	RoundState  string `json:"RoundState"`
	PlayerCount string `json:"PlayerCount"`
}

// MapEntry is one slot of the map rotation.
type MapEntry struct {
	MapID    string `json:"MapId"`
	GameMode string `json:"GameMode"`
}

type ServerInfoResponse struct {
	Result
	ServerInfo ServerInfo `json:"ServerInfo"`
}

type RefreshListResponse struct {
	Result
	PlayerList []Player `json:"PlayerList"`
}

type InspectListResponse struct {
	Result
	InspectList []PlayerDetail `json:"InspectList"`
}

type InspectPlayerResponse struct {
	Result
	PlayerInfo PlayerDetail `json:"PlayerInfo"`
}

// PlayerResponse answers commands that act on one player.
type PlayerResponse struct {
	Result
	UniqueID string `json:"UniqueID"`
}

type BanlistResponse struct {
	Result
	BanList []string `json:"BanList"`
}

type MapListResponse struct {
	Result
	MapList []MapEntry `json:"MapList"`
}

type ItemListResponse struct {
	Result
	ItemList []string `json:"ItemList"`
}

type PauseMatchResponse struct {
	Result
	PauseTime  int  `json:"PauseTime"`
	PauseMatch bool `json:"PauseMatch"`
}

type response interface{ succeeded() bool }

// call sends name with args and decodes the response into v.  When
// the server reports failure, v is still filled in and the error wraps
// ErrCommandFailed.
func (c *Client) call(ctx context.Context, v response, name string, args ...string) error {
	line, err := commandLine(name, args...)
	if err != nil {
		return err
	}
	if err := c.InvokeInto(ctx, line, name, v); err != nil {
		return err
	}
	if !v.succeeded() {
		return fmt.Errorf("%w: %s", ErrCommandFailed, line)
	}
	return nil
}

// commandLine joins name and args.  An argument must be non-empty and
// free of whitespace and control characters, or the server would read
// it as several arguments or several commands.
func commandLine(name string, args ...string) (string, error) {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		if a == "" || strings.IndexFunc(a, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsControl(r)
		}) >= 0 {
			return "", fmt.Errorf("%w: %s %q", ErrInvalidArgument, name, a)
		}
		b.WriteByte(' ')
		b.WriteString(a)
	}
	return b.String(), nil
}

// ServerInfo reports the current map, mode, scores and player count.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfoResponse, error) {
	var r ServerInfoResponse
	return &r, c.call(ctx, &r, "ServerInfo")
}

// RefreshList lists connected players.
func (c *Client) RefreshList(ctx context.Context) (*RefreshListResponse, error) {
	var r RefreshListResponse
	return &r, c.call(ctx, &r, "RefreshList")
}

func (c *Client) InspectAll(ctx context.Context) (*InspectListResponse, error) {
	var r InspectListResponse
	return &r, c.call(ctx, &r, "InspectAll")
}

func (c *Client) InspectTeam(ctx context.Context, teamID int) (*InspectListResponse, error) {
	var r InspectListResponse
	return &r, c.call(ctx, &r, "InspectTeam", strconv.Itoa(teamID))
}

func (c *Client) InspectPlayer(ctx context.Context, uniqueID string) (*InspectPlayerResponse, error) {
	var r InspectPlayerResponse
	return &r, c.call(ctx, &r, "InspectPlayer", uniqueID)
}

func (c *Client) Kick(ctx context.Context, uniqueID string) (*PlayerResponse, error) {
	return c.playerCommand(ctx, "Kick", uniqueID)
}

func (c *Client) Ban(ctx context.Context, uniqueID string) (*PlayerResponse, error) {
	return c.playerCommand(ctx, "Ban", uniqueID)
}

func (c *Client) Unban(ctx context.Context, uniqueID string) (*PlayerResponse, error) {
	return c.playerCommand(ctx, "Unban", uniqueID)
}

func (c *Client) Kill(ctx context.Context, uniqueID string) (*PlayerResponse, error) {
	return c.playerCommand(ctx, "Kill", uniqueID)
}

// Gag mutes or unmutes a player's voice chat.
func (c *Client) Gag(ctx context.Context, uniqueID string, gag bool) (*PlayerResponse, error) {
	return c.playerCommand(ctx, "Gag", uniqueID, strconv.FormatBool(gag))
}

// GiveItem hands itemID (an ItemList entry) to a player.
func (c *Client) GiveItem(ctx context.Context, uniqueID, itemID string) (*PlayerResponse, error) {
	return c.playerCommand(ctx, "GiveItem", uniqueID, itemID)
}

func (c *Client) GiveCash(ctx context.Context, uniqueID string, amount int) (*PlayerResponse, error) {
	return c.playerCommand(ctx, "GiveCash", uniqueID, strconv.Itoa(amount))
}

func (c *Client) playerCommand(ctx context.Context, name, uniqueID string, extra ...string) (*PlayerResponse, error) {
	var r PlayerResponse
	return &r, c.call(ctx, &r, name, append([]string{uniqueID}, extra...)...)
}

func (c *Client) Banlist(ctx context.Context) (*BanlistResponse, error) {
	var r BanlistResponse
	return &r, c.call(ctx, &r, "Banlist")
}

// MapList returns the map rotation.
func (c *Client) MapList(ctx context.Context) (*MapListResponse, error) {
	var r MapListResponse
	return &r, c.call(ctx, &r, "MapList")
}

func (c *Client) ItemList(ctx context.Context) (*ItemListResponse, error) {
	var r ItemListResponse
	return &r, c.call(ctx, &r, "ItemList")
}

// SwitchMap changes to mapID, a map resource id such as "datacenter" or
// a workshop id like "UGC1758245796", in the given mode.
func (c *Client) SwitchMap(ctx context.Context, mapID string, mode GameMode) (*Result, error) {
	var r Result
	return &r, c.call(ctx, &r, "SwitchMap", mapID, string(mode))
}

// RotateMap moves to the next map in the rotation.
func (c *Client) RotateMap(ctx context.Context) (*Result, error) {
	var r Result
	return &r, c.call(ctx, &r, "RotateMap")
}

func (c *Client) AddMapRotation(ctx context.Context, mapID string, mode GameMode) (*Result, error) {
	var r Result
	return &r, c.call(ctx, &r, "AddMapRotation", mapID, string(mode))
}

func (c *Client) RemoveMapRotation(ctx context.Context, mapID string, mode GameMode) (*Result, error) {
	var r Result
	return &r, c.call(ctx, &r, "RemoveMapRotation", mapID, string(mode))
}

// PauseMatch pauses the match for seconds, at most one hour.  A
// negative value sends the bare command, which unpauses.
func (c *Client) PauseMatch(ctx context.Context, seconds int) (*PauseMatchResponse, error) {
	var r PauseMatchResponse
	if seconds < 0 {
		return &r, c.call(ctx, &r, "PauseMatch")
	}
	if seconds > maxPauseSeconds {
		return &r, fmt.Errorf("%w: PauseMatch %d exceeds %d seconds", ErrInvalidArgument, seconds, maxPauseSeconds)
	}
	return &r, c.call(ctx, &r, "PauseMatch", strconv.Itoa(seconds))
}

// SetPin sets the four digit server pin.  A negative value sends the
// bare command, which removes the pin.
func (c *Client) SetPin(ctx context.Context, pin int) (*Result, error) {
	var r Result
	if pin < 0 {
		return &r, c.call(ctx, &r, "SetPin")
	}
	return &r, c.call(ctx, &r, "SetPin", strconv.Itoa(pin))
}

func (c *Client) SetLimitedAmmoType(ctx context.Context, t AmmoType) (*Result, error) {
	var r Result
	return &r, c.call(ctx, &r, "SetLimitedAmmoType", strconv.Itoa(int(t)))
}

func (c *Client) SetMaxPlayers(ctx context.Context, n int) (*Result, error) {
	var r Result
	return &r, c.call(ctx, &r, "SetMaxPlayers", strconv.Itoa(n))
}
