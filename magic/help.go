package magic

// HelpText is the console help shown by :help.
const HelpText = `Signal Deck — The oscilloscope for Home Assistant

Commands:
  :help              Show this help message
  :clear             Clear the output

Magic Commands:
  %ls [domain]       List entities (optionally filter by domain)
  %get <entity_id>   Show entity state
  %find <pattern>    Search entities by glob pattern
  %hist <id> [-h N]  Show entity history (last N hours)
  %attrs <id>        Show all entity attributes
  %diff <id1> <id2>  Compare two entities side-by-side
  %bundle <name>     Run a named bundle
  %fmt <format>      Set output format (table, json, text)
  %ask <question>    Ask the AI assistant (via HA Conversation)

Auto-resolve:
  sensor.temp        → %get sensor.temp
  light              → %ls light

Script API — State & Entities:
  state(id)            Get entity state as an EntityState record
  states([domain])     List all states (optionally by domain)
  entities(id)         Get entity registry entry (integration, device, platform)
  devices([query])     List/search devices

Script API — History & Diagnostics:
  history(id, [hours]) Get entity history (default 6h)
  statistics(id, [hours], [period])  Get long-term statistics
  events(id, [days])   Get calendar events (default 14 days forward)
  logbook(id, [hours]) Get logbook entries
  traces([automation_id]) Get automation traces (all or specific)
  error_log()          Fetch the error log
  check_config()       Validate configuration

Script API — Rooms & Services:
  room(name)           Get all entities in an area/room
  rooms()              List all areas/rooms
  services([domain])   List available services
  call_service(d,s,{}) Call a service

Script API — Utilities:
  show(value)          Pretty-print a value
  now()                Get current date/time
  ago(spec)            Relative time (e.g. ago("6h"), ago("2d"))
  template(tpl)        Render a template

Script API — Charts:
  plot_line(labels, values, [title])  Line chart
  plot_bar(labels, values, [title])   Bar chart
  plot_pie(data, [title])             Pie chart (data = {name: val})
  plot_series(points, [title])        XY / time-series line chart
  Multi-series: plot_line(labels, {"A": [...], "B": [...]}, title)
  Series data:  plot_series([[x,y],...]) or {"A": [[x,y],...], ...}
  Time axis auto-detected from epoch-ms x values.
`
